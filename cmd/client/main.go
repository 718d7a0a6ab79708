package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"chat-system/config"
	"chat-system/internal/client"
	"chat-system/internal/session"

	"go.uber.org/zap"
)

// 账户服务命令行客户端
// 通过会话镜像持有当前用户，登录状态保存在本地会话文件中

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "初始化日志失败:", err)
		os.Exit(1)
	}
	defer log.Sync()

	api := client.New(cfg.Client.ServerURL)
	storage := session.NewStorage(cfg.Client.SessionFile)
	mirror := session.NewManager(storage, api, log)
	mirror.Load()

	switch os.Args[1] {
	case "register":
		runRegister(api, mirror, os.Args[2:])
	case "login":
		runLogin(api, mirror, os.Args[2:])
	case "logout":
		runLogout(mirror)
	case "list":
		runList(api)
	case "whoami":
		runWhoami(mirror)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `用法: client <command> [options]

命令:
  register -username <name> -email <addr> -password <pwd> [-avatar <url>]
  login    -username <name> -password <pwd>
  logout
  list
  whoami`)
}

func runRegister(api *client.Client, mirror *session.Manager, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "用户名")
	email := fs.String("email", "", "邮箱")
	password := fs.String("password", "", "密码")
	avatar := fs.String("avatar", "", "头像URL")
	_ = fs.Parse(args)

	user, err := api.Register(*username, *email, *password, *avatar)
	if err != nil {
		fmt.Fprintln(os.Stderr, "注册失败:", err)
		os.Exit(1)
	}
	mirror.Login(user)
	fmt.Printf("注册成功: %s (%s)\n", user.Username, user.ID)
}

func runLogin(api *client.Client, mirror *session.Manager, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "用户名")
	password := fs.String("password", "", "密码")
	_ = fs.Parse(args)

	user, err := api.Login(*username, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "登录失败:", err)
		os.Exit(1)
	}
	mirror.Login(user)
	fmt.Printf("登录成功: %s\n", user.Username)
}

func runLogout(mirror *session.Manager) {
	snap := mirror.Snapshot()
	if !snap.IsAuthenticated {
		fmt.Println("当前未登录")
		return
	}
	mirror.Logout()
	// 等待fire-and-forget的服务端通知发出
	time.Sleep(500 * time.Millisecond)
	fmt.Println("已退出登录")
}

func runList(api *client.Client) {
	users, err := api.ListUsers()
	if err != nil {
		fmt.Fprintln(os.Stderr, "获取用户目录失败:", err)
		os.Exit(1)
	}
	for _, u := range users {
		status := "离线"
		if u.IsOnline {
			status = "在线"
		}
		fmt.Printf("%-20s %-30s %s  最近在线 %s\n",
			u.Username, u.Email, status, u.LastSeen.Format("2006-01-02 15:04:05"))
	}
}

func runWhoami(mirror *session.Manager) {
	snap := mirror.Snapshot()
	if !snap.IsAuthenticated {
		fmt.Println("当前未登录")
		return
	}
	u := snap.User
	fmt.Printf("%s (%s)\n邮箱: %s\n注册时间: %s\n",
		u.Username, u.ID, u.Email, u.CreatedAt.Format("2006-01-02 15:04:05"))
}
