package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// disconnectCmd 代表 disconnect 命令
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "断开连接",
	Long:  `清除当前会话。没有会话时也视为成功。`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildBridge()
		if err != nil {
			fmt.Printf("初始化失败: %v\n", err)
			return
		}

		if err := svc.Disconnect(context.Background()); err != nil {
			fmt.Printf("断开失败: %v\n", err)
			return
		}
		fmt.Println("已断开。")
	},
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}
