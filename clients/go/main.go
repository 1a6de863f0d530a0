// MiniChat CLI - Command line client for the MiniChat gateway
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Pkra99/minichat-v2/clients/go/minichat"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("MINICHAT_URL")
	tenantID := os.Getenv("MINICHAT_TENANT")
	if tenantID == "" {
		tenantID = "cli-demo"
	}

	client := minichat.NewClient(baseURL, tenantID)
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		fmt.Printf("%s (%s) store=%s responder=%s\n",
			resp.Status, resp.Service, resp.Store, resp.ResponderStatus)

	case "send":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: minichat send <message>")
			os.Exit(1)
		}
		resp, err := client.Send(strings.Join(os.Args[2:], " "))
		exitOnError(err)
		fmt.Println(resp.Message)

	case "chat":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: minichat chat <message>")
			os.Exit(1)
		}
		opts := minichat.StreamOptions{Mode: os.Getenv("MINICHAT_MODE")}
		summary, err := client.Stream(strings.Join(os.Args[2:], " "), opts, func(text string) {
			fmt.Print(text)
		})
		exitOnError(err)
		fmt.Printf("\n-- %s, %d chars in %d chunks\n",
			summary.Engine, summary.TotalLength, summary.ChunkCount)

	case "history":
		resp, err := client.State()
		exitOnError(err)
		for _, msg := range resp.Messages {
			ts := msg.Timestamp.Format("2006-01-02 15:04:05")
			fmt.Printf("[%s] %s: %s\n", ts, msg.Role, msg.Content)
		}
		fmt.Printf("-- %d messages, %d tenants total\n",
			resp.Tenant.MessageCount, resp.GlobalStats.TenantCount)

	case "clear":
		cleared, err := client.ClearState()
		exitOnError(err)
		if cleared {
			fmt.Println("history cleared")
		} else {
			fmt.Println("nothing to clear")
		}

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `MiniChat CLI

Usage: minichat <command> [args]

Commands:
  health          Check gateway health
  send <msg>      Submit a message without streaming
  chat <msg>      Send a message and stream the reply
  history         Show conversation history
  clear           Clear conversation history

Environment:
  MINICHAT_URL     Gateway base URL (default http://localhost:8080)
  MINICHAT_TENANT  Tenant ID (default cli-demo)
  MINICHAT_MODE    Reply mode: fast or slow`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
