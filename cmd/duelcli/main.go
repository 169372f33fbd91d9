// Command duelcli is a terminal client for playing against the duelgrid
// server. It queues for a match, renders every state update, and reads
// moves from stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type matchFound struct {
	SessionID    string `json:"session_id"`
	GameType     string `json:"game_type"`
	PlayerNumber int    `json:"player_number"`
	Opponent     string `json:"opponent"`
}

type snapshot struct {
	SessionID            string  `json:"session_id"`
	GameType             string  `json:"game_type"`
	State                string  `json:"state"`
	Board                [][]int `json:"board_state"`
	NextPlayer           int     `json:"next_player"`
	Player1Name          string  `json:"player1_name"`
	Player2Name          string  `json:"player2_name"`
	Player1TimeRemaining float64 `json:"player1_time_remaining"`
	Player2TimeRemaining float64 `json:"player2_time_remaining"`
	Winner               *string `json:"winner"`
}

type timeExpired struct {
	SessionID string `json:"session_id"`
	Winner    string `json:"winner"`
	Loser     string `json:"loser"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type client struct {
	conn         *websocket.Conn
	sessionID    string
	playerNumber int

	infoColor *color.Color
	p1Color   *color.Color
	p2Color   *color.Color
	winColor  *color.Color
	errColor  *color.Color
}

func main() {
	cmd := &cli.Command{
		Name:  "duelcli",
		Usage: "Play tictactoe or connect4 against the duelgrid server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "localhost:8080", Usage: "server host:port"},
			&cli.StringFlag{Name: "game", Value: "tictactoe", Usage: "game type (tictactoe or connect4)"},
			&cli.StringFlag{Name: "user", Value: "", Usage: "user id (dev mode)"},
			&cli.StringFlag{Name: "name", Value: "", Usage: "display name (dev mode)"},
			&cli.StringFlag{Name: "token", Value: "", Usage: "JWT bearer token"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	u := url.URL{Scheme: "ws", Host: cmd.String("server"), Path: "/ws"}
	q := u.Query()
	if token := cmd.String("token"); token != "" {
		q.Set("token", token)
	} else {
		user := cmd.String("user")
		if user == "" {
			return fmt.Errorf("either -token or -user is required")
		}
		q.Set("user", user)
		if name := cmd.String("name"); name != "" {
			q.Set("name", name)
		}
	}
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", u.Host, err)
	}
	defer conn.Close()

	c := &client{
		conn:      conn,
		infoColor: color.New(color.FgCyan),
		p1Color:   color.New(color.FgRed, color.Bold),
		p2Color:   color.New(color.FgYellow, color.Bold),
		winColor:  color.New(color.FgGreen, color.Bold),
		errColor:  color.New(color.FgRed),
	}

	gameType := cmd.String("game")
	if err := c.send("join-queue", map[string]string{"game_type": gameType}); err != nil {
		return err
	}
	c.infoColor.Printf("Queued for %s, waiting for an opponent...\n", gameType)

	events := make(chan envelope)
	readErr := make(chan error, 1)
	go func() {
		for {
			var event envelope
			if err := conn.ReadJSON(&event); err != nil {
				readErr <- err
				return
			}
			events <- event
		}
	}()

	moves := make(chan int)
	go readMoves(moves)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErr:
			return fmt.Errorf("connection closed: %w", err)

		case event := <-events:
			done, err := c.handleEvent(event)
			if err != nil {
				return err
			}
			if done {
				return nil
			}

		case position := <-moves:
			if c.sessionID == "" {
				c.errColor.Println("No game in progress yet")
				continue
			}
			err := c.send("make-move", map[string]interface{}{
				"session_id": c.sessionID,
				"position":   position,
			})
			if err != nil {
				return err
			}
		}
	}
}

// readMoves feeds parsed stdin positions into the game loop.
func readMoves(moves chan<- int) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		position, err := strconv.Atoi(text)
		if err != nil {
			fmt.Printf("Not a position: %q\n", text)
			continue
		}
		moves <- position
	}
}

func (c *client) send(msgType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.conn.WriteJSON(envelope{Type: msgType, Data: payload})
}

// handleEvent processes one server event. It returns done=true when the
// game has ended.
func (c *client) handleEvent(event envelope) (bool, error) {
	switch event.Type {
	case "queued":
		return false, nil

	case "match-found":
		var m matchFound
		if err := json.Unmarshal(event.Data, &m); err != nil {
			return false, err
		}
		c.sessionID = m.SessionID
		c.playerNumber = m.PlayerNumber
		c.infoColor.Printf("Matched against %s. You are player %d.\n", m.Opponent, m.PlayerNumber)
		// Join the session room to start receiving state updates.
		return false, c.send("join-session", map[string]string{"session_id": m.SessionID})

	case "state-update":
		var snap snapshot
		if err := json.Unmarshal(event.Data, &snap); err != nil {
			return false, err
		}
		c.render(&snap)
		return snap.State != "ACTIVE" && snap.State != "WAITING", nil

	case "time-expired":
		var exp timeExpired
		if err := json.Unmarshal(event.Data, &exp); err != nil {
			return false, err
		}
		c.winColor.Printf("Time! %s wins on time over %s.\n", exp.Winner, exp.Loser)
		return false, nil

	case "error":
		var werr wireError
		if err := json.Unmarshal(event.Data, &werr); err != nil {
			return false, err
		}
		c.errColor.Printf("[%s] %s\n", werr.Code, werr.Message)
		return false, nil

	default:
		return false, nil
	}
}

var glyphs = [...]string{".", "X", "O"}

func (c *client) render(snap *snapshot) {
	fmt.Println()
	c.p1Color.Printf("%s (X) %.1fs", snap.Player1Name, snap.Player1TimeRemaining)
	fmt.Print("  vs  ")
	c.p2Color.Printf("%s (O) %.1fs\n", snap.Player2Name, snap.Player2TimeRemaining)

	// Column header helps with connect4, where position is the column.
	if snap.GameType == "connect4" && len(snap.Board) > 0 {
		for col := range snap.Board[0] {
			fmt.Printf("%d ", col)
		}
		fmt.Println()
	}

	for rowIdx, row := range snap.Board {
		for _, cell := range row {
			switch cell {
			case 1:
				c.p1Color.Print(glyphs[1])
			case 2:
				c.p2Color.Print(glyphs[2])
			default:
				fmt.Print(glyphs[0])
			}
			fmt.Print(" ")
		}
		if snap.GameType == "tictactoe" {
			// Cell indices along each row make move entry obvious.
			fmt.Printf("  (%d-%d)", rowIdx*len(row), rowIdx*len(row)+len(row)-1)
		}
		fmt.Println()
	}

	switch {
	case snap.Winner != nil:
		c.winColor.Printf("Game over: %s wins!\n", *snap.Winner)
	case snap.State == "DRAW":
		c.infoColor.Println("Game over: draw.")
	case snap.NextPlayer == c.playerNumber:
		c.infoColor.Println("Your move (enter a position):")
	default:
		c.infoColor.Println("Waiting for opponent...")
	}
}
