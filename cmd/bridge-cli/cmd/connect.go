package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"bridge-core/internal/bridge"
	"bridge-core/internal/modal"
	"bridge-core/pkg/errno"

	"github.com/spf13/cobra"
)

// connectCmd 代表 connect 命令
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "连接钱包",
	Long: `发起连接流程。已有有效会话时直接恢复;
否则提示输入 action code, 由远端钱包完成签名绑定。`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, controller, err := buildBridge()
		if err != nil {
			fmt.Printf("初始化失败: %v\n", err)
			return
		}

		type outcome struct {
			res *bridge.ConnectResult
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			res, err := svc.Connect(context.Background(), bridge.ConnectOptions{})
			done <- outcome{res, err}
		}()

		// 终端就是"模态框": 为等待中的流程读一个 code。
		// 有效会话恢复时 Connect 立刻返回, 不会走到提示。
		scanner := bufio.NewScanner(os.Stdin)
		go func() {
			fmt.Print("请输入 action code (空行取消): ")
			if !scanner.Scan() {
				controller.Close(modal.ReasonEscape)
				return
			}
			code := strings.TrimSpace(scanner.Text())
			if code == "" {
				controller.Close(modal.ReasonCloseButton)
				return
			}
			controller.SubmitCode(code)
		}()

		out := <-done
		if out.err != nil {
			display := errno.Normalize(out.err)
			fmt.Printf("连接失败: %s\n", display.Message)
			if display.Hint != "" {
				fmt.Printf("提示: %s\n", display.Hint)
			}
			return
		}
		if out.res.Cancelled {
			fmt.Println("已取消。")
			return
		}

		fmt.Println("---------------------------------------------------")
		if out.res.NewSession {
			fmt.Println("钱包连接成功 (新会话)")
		} else {
			fmt.Println("钱包连接成功 (恢复已有会话)")
		}
		fmt.Printf("地址: %s\n", out.res.Address)
		fmt.Println("---------------------------------------------------")
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
