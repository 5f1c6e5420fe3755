package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wonguwon/jwt-login/pkg/auth"
	"github.com/wonguwon/jwt-login/pkg/chat"
	"github.com/wonguwon/jwt-login/pkg/config"
	"github.com/wonguwon/jwt-login/pkg/model"
	"github.com/wonguwon/jwt-login/pkg/rest"
	"github.com/wonguwon/jwt-login/pkg/ws"
)

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	// Keep stdout free for the chat itself.
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	apiURL := flag.String("api", "", "REST base URL (overrides config)")
	connectURL := flag.String("connect", "", "WebSocket connect URL (overrides config)")
	token := flag.String("token", "", "bearer token (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *connectURL != "" {
		cfg.Live.ConnectURL = *connectURL
	}
	if *token != "" {
		cfg.API.Token = *token
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	claims, err := auth.ParseToken(cfg.API.Token)
	if err != nil {
		log.Fatal(err)
	}
	if claims.ExpiredAt(time.Now()) {
		log.Fatal("bearer token is expired, log in again")
	}

	api := rest.NewClient(cfg.API.BaseURL, cfg.API.Token, logger)
	directory := rest.NewDirectory(api)
	session := chat.NewSession(
		rest.NewHistoryLoader(api),
		rest.NewReadTracker(api),
		func() chat.Conn {
			return ws.NewManager(cfg.Live.ConnectURL, cfg.API.Token, claims.Email(), logger)
		},
		logger,
	)

	ctx := context.Background()
	defer session.Close(ctx)

	// Print live messages as they arrive.
	go func() {
		for msg := range session.Updates() {
			fmt.Printf("\r%s: %s\n> ", msg.SenderID, msg.Body)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Println()
		session.Close(ctx)
		os.Exit(0)
	}()

	cli := &cli{
		directory: directory,
		session:   session,
		rooms:     make(map[int64]model.ChatRoom),
	}

	fmt.Printf("Logged in as %s. Type /help for commands.\n", claims.Email())
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			break
		}
		if line != "" {
			cli.handle(ctx, line)
		}
		fmt.Print("> ")
	}
	session.Close(ctx)
}

type cli struct {
	directory *rest.Directory
	session   *chat.Session
	rooms     map[int64]model.ChatRoom // last seen membership, for the leave guard
}

func (c *cli) handle(ctx context.Context, line string) {
	if !strings.HasPrefix(line, "/") {
		if err := c.session.SendMessage(line); err != nil {
			fmt.Println("send failed:", err)
		}
		return
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/help":
		fmt.Println(`/rooms            list my rooms
/groups           list group rooms
/create <name>    create a group room
/join <roomId>    join a group room
/leave <roomId>   leave a group room
/dm <memberId>    open a private room with a member
/open <roomId>    open a room
/close            close the open room
/quit             exit`)
	case "/rooms":
		rooms, err := c.directory.ListMyRooms(ctx)
		if err != nil {
			fmt.Println("room list unavailable:", err)
			return
		}
		for _, r := range rooms {
			c.rooms[r.ID] = r
			fmt.Printf("  [%d] %s (%s, %d unread)\n", r.ID, r.Name, r.Kind, r.UnreadCount)
		}
	case "/groups":
		rooms, err := c.directory.ListGroupRooms(ctx)
		if err != nil {
			fmt.Println("room list unavailable:", err)
			return
		}
		for _, r := range rooms {
			fmt.Printf("  [%d] %s\n", r.ID, r.Name)
		}
	case "/create":
		room, err := c.directory.CreateGroupRoom(ctx, arg)
		if err != nil {
			fmt.Println("create failed:", err)
			return
		}
		fmt.Printf("created %q\n", room.Name)
	case "/join":
		roomID, ok := parseRoomID(arg)
		if !ok {
			return
		}
		if err := c.directory.JoinGroupRoom(ctx, roomID); err != nil {
			fmt.Println("join failed:", err)
			return
		}
		fmt.Println("joined room", roomID)
	case "/leave":
		roomID, ok := parseRoomID(arg)
		if !ok {
			return
		}
		room, known := c.rooms[roomID]
		if !known {
			// Refresh membership so the private-room guard has a kind.
			rooms, err := c.directory.ListMyRooms(ctx)
			if err != nil {
				fmt.Println("room list unavailable:", err)
				return
			}
			for _, r := range rooms {
				c.rooms[r.ID] = r
			}
			if room, known = c.rooms[roomID]; !known {
				fmt.Println("not a member of room", roomID)
				return
			}
		}
		if err := c.directory.LeaveGroupRoom(ctx, room); err != nil {
			fmt.Println("leave failed:", err)
			return
		}
		delete(c.rooms, roomID)
		fmt.Println("left room", roomID)
	case "/dm":
		memberID, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			fmt.Println("usage: /dm <memberId>")
			return
		}
		roomID, err := c.directory.EnsurePrivateRoom(ctx, memberID)
		if err != nil {
			fmt.Println("dm failed:", err)
			return
		}
		c.openRoom(ctx, roomID)
	case "/open":
		roomID, ok := parseRoomID(arg)
		if !ok {
			return
		}
		c.openRoom(ctx, roomID)
	case "/close":
		if err := c.session.Close(ctx); err != nil {
			fmt.Println("close failed:", err)
			return
		}
		fmt.Println("room closed")
	default:
		fmt.Println("unknown command, try /help")
	}
}

func (c *cli) openRoom(ctx context.Context, roomID int64) {
	if err := c.session.OpenRoom(ctx, roomID); err != nil {
		fmt.Println("open room:", err)
		if c.session.State() != chat.StateLive {
			return
		}
		// History failed but the live stream is up; keep going.
	}
	for _, msg := range c.session.Store().Messages() {
		fmt.Printf("%s: %s\n", msg.SenderID, msg.Body)
	}
	fmt.Println("-- room", roomID, "open, type to chat --")
}

func parseRoomID(arg string) (int64, bool) {
	roomID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || roomID <= 0 {
		fmt.Println("expected a room id")
		return 0, false
	}
	return roomID, true
}
