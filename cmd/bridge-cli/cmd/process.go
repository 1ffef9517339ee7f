package cmd

import (
	"context"
	"fmt"

	"bridge-core/pkg/errno"

	"github.com/spf13/cobra"
)

// processCmd 代表 process 命令
var processCmd = &cobra.Command{
	Use:   "process <action-code>",
	Short: "直接处理一个 action code (无交互)",
	Long: `跳过输入提示, 直接用给定的 action code 建立会话。
适合脚本或调用方已经从别处拿到 code 的场景。`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildBridge()
		if err != nil {
			fmt.Printf("初始化失败: %v\n", err)
			return
		}

		addr, err := svc.ProcessAction(context.Background(), args[0])
		if err != nil {
			display := errno.Normalize(err)
			fmt.Printf("处理失败: %s\n", display.Message)
			if display.Hint != "" {
				fmt.Printf("提示: %s\n", display.Hint)
			}
			return
		}

		fmt.Println("连接成功。")
		fmt.Printf("地址: %s\n", addr)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
