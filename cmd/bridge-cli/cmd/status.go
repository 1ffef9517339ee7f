package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd 代表 status 命令
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "查询连接状态",
	Long:  `检查当前 origin 是否有有效会话, 有则显示绑定的钱包地址。`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildBridge()
		if err != nil {
			fmt.Printf("初始化失败: %v\n", err)
			return
		}

		ctx := context.Background()
		if !svc.IsConnected(ctx) {
			fmt.Println("未连接。")
			return
		}
		fmt.Println("已连接。")
		fmt.Printf("地址: %s\n", svc.ConnectedAddress(ctx))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
