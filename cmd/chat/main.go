package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ai-docassist/pkg/client/api"
	"ai-docassist/pkg/client/auth"
	"ai-docassist/pkg/client/router"

	"github.com/fatih/color"
)

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	agentColor  = color.New(color.FgGreen)
	metaColor   = color.New(color.FgHiBlack)
	errColor    = color.New(color.FgRed)
)

func main() {
	baseURL := os.Getenv("DOCASSIST_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("cannot resolve home directory: %v", err)
	}
	storePath := filepath.Join(home, ".docassist", "tokens.json")

	apiClient := api.New(baseURL)
	manager := auth.NewManager(apiClient, auth.NewFileStore(storePath))

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	if err := manager.Bootstrap(ctx); err != nil {
		metaColor.Printf("(session bootstrap: %v)\n", err)
	}
	if !manager.IsAuthenticated() {
		if err := interactiveLogin(ctx, manager, reader); err != nil {
			errColor.Printf("authentication failed: %v\n", err)
			os.Exit(1)
		}
	}

	stopRefresh := manager.StartAutoRefresh(ctx)
	defer stopRefresh()

	if u := manager.User(); u != nil {
		agentColor.Printf("Signed in as %s\n", u.Username)
	}
	metaColor.Println("Commands: /doc <q>  /img <q>  /upload <file>  /docs  /logout  /quit")

	r := router.New(apiClient, manager)
	sessionId := ""

	for {
		promptColor.Print("you> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return
		case line == "/logout":
			manager.Logout(ctx)
			agentColor.Println("Logged out.")
			return
		case line == "/docs":
			listDocuments(ctx, apiClient, manager)
			continue
		case strings.HasPrefix(line, "/upload "):
			uploadDocument(ctx, apiClient, manager, strings.TrimSpace(line[len("/upload "):]))
			continue
		case strings.HasPrefix(line, "/doc "):
			line = router.TagDocumentQuery + " " + strings.TrimSpace(line[len("/doc "):])
		case strings.HasPrefix(line, "/img "):
			line = router.TagImageProcessing + " " + strings.TrimSpace(line[len("/img "):])
		}

		parsed := router.Parse(line)
		if parsed.IsEmpty() {
			continue
		}

		if sessionId == "" {
			sessionId = startSession(ctx, apiClient, manager)
		}
		recordMessage(ctx, apiClient, manager, sessionId, parsed.Original, "user", nil)

		result := r.Resolve(ctx, line, router.Context{
			HasCompletedDocuments: hasCompletedDocuments(ctx, apiClient, manager),
		})

		agentColor.Printf("%s> ", result.AgentInfo.SelectedAgent)
		fmt.Println(result.Response)
		if len(result.AgentInfo.Sources) > 0 {
			metaColor.Printf("  sources: %s\n", strings.Join(result.AgentInfo.Sources, ", "))
		}
		metaColor.Printf("  confidence: %.2f\n", result.AgentInfo.Confidence)

		recordMessage(ctx, apiClient, manager, sessionId, result.Response, "ai", map[string]interface{}{
			"selected_agent": string(result.AgentInfo.SelectedAgent),
			"confidence":     result.AgentInfo.Confidence,
			"sources":        result.AgentInfo.Sources,
		})
	}
}

func interactiveLogin(ctx context.Context, manager *auth.Manager, reader *bufio.Reader) error {
	promptColor.Print("login or register? [l/r] ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))

	ask := func(label string) string {
		promptColor.Printf("%s: ", label)
		v, _ := reader.ReadString('\n')
		return strings.TrimSpace(v)
	}

	if choice == "r" {
		username := ask("username")
		email := ask("email")
		password := ask("password")
		return manager.Register(ctx, username, email, password)
	}

	username := ask("username or email")
	password := ask("password")
	return manager.Login(ctx, username, password)
}

func token(manager *auth.Manager) string {
	tok, _ := manager.AccessToken()
	return tok
}

func startSession(ctx context.Context, c *api.Client, manager *auth.Manager) string {
	session, err := c.CreateSession(ctx, token(manager), "")
	if err != nil {
		metaColor.Printf("(session not persisted: %v)\n", err)
		return ""
	}
	return session.Id
}

func recordMessage(ctx context.Context, c *api.Client, manager *auth.Manager, sessionId, content, sender string, agentInfo map[string]interface{}) {
	if sessionId == "" {
		return
	}
	if _, err := c.AddMessage(ctx, token(manager), sessionId, content, sender, agentInfo); err != nil {
		metaColor.Printf("(message not persisted: %v)\n", err)
	}
}

func hasCompletedDocuments(ctx context.Context, c *api.Client, manager *auth.Manager) bool {
	resp, err := c.ListDocuments(ctx, token(manager))
	if err != nil {
		return false
	}
	for _, d := range resp.Documents {
		if d.Status == "completed" {
			return true
		}
	}
	return false
}

func listDocuments(ctx context.Context, c *api.Client, manager *auth.Manager) {
	resp, err := c.ListDocuments(ctx, token(manager))
	if err != nil {
		errColor.Printf("failed to list documents: %v\n", err)
		return
	}
	if len(resp.Documents) == 0 {
		metaColor.Println("no documents uploaded yet")
		return
	}
	for _, d := range resp.Documents {
		fmt.Printf("  %-40s %-10s chunks=%d\n", d.Name, d.Status, d.ChunkCount)
	}
}

func uploadDocument(ctx context.Context, c *api.Client, manager *auth.Manager, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		errColor.Printf("cannot read %s: %v\n", path, err)
		return
	}
	resp, err := c.UploadDocument(ctx, token(manager), filepath.Base(path), data)
	if err != nil {
		errColor.Printf("upload failed: %v\n", err)
		return
	}
	for _, d := range resp.Documents {
		agentColor.Printf("uploaded %s (%s)\n", d.Name, d.Status)
	}
}
