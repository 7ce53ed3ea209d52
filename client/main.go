// Interactive test client. Commands:
//
//	create <name> [avatar]
//	join <code> <name> [avatar]
//	roll
//	hold <index>
//	score <category>
//	surrender
//	rematch
//	leave
package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/yatzyserver/network"
)

var msgNames = map[uint16]string{
	network.MsgTypeRoomCreated:        "room_created",
	network.MsgTypeGameStarted:        "game_started",
	network.MsgTypeGameState:          "game_state",
	network.MsgTypeGameOver:           "game_over",
	network.MsgTypePlayerDisconnected: "player_disconnected",
	network.MsgTypeError:              "error",
}

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, v interface{}) error {
	var data []byte
	if v != nil {
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return err
		}
	}

	packet, err := network.EncodeFrame(msgID, data)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	host := "localhost:8080"
	if len(os.Args) > 1 {
		host = os.Args[1]
	}
	u := url.URL{Scheme: "ws", Host: host, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			packet, err := network.DecodePacket(message)
			if err != nil {
				log.Printf("Received invalid packet of size %d: %v", len(message), err)
				continue
			}
			name := msgNames[packet.MsgID]
			if name == "" {
				name = strconv.Itoa(int(packet.MsgID))
			}
			log.Printf("<- %s: %s", name, string(packet.Data))
		}
	}()

	log.Println("Client started. Type 'create <name>' or 'join <code> <name>' to play.")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				req := map[string]string{"name": arg(fields, 1), "avatar": arg(fields, 2)}
				err = send(c, network.MsgTypeCreateRoom, req)
			case "join":
				req := map[string]string{"code": arg(fields, 1), "name": arg(fields, 2), "avatar": arg(fields, 3)}
				err = send(c, network.MsgTypeJoinRoom, req)
			case "roll":
				err = send(c, network.MsgTypeRollDice, nil)
			case "hold":
				index, convErr := strconv.Atoi(arg(fields, 1))
				if convErr != nil {
					log.Println("Usage: hold <index>")
					continue
				}
				err = send(c, network.MsgTypeToggleHold, map[string]int{"index": index})
			case "score":
				err = send(c, network.MsgTypeScoreCategory, map[string]string{"category": arg(fields, 1)})
			case "surrender":
				err = send(c, network.MsgTypeSurrender, nil)
			case "rematch":
				err = send(c, network.MsgTypeRematch, nil)
			case "leave":
				err = send(c, network.MsgTypeLeaveRoom, nil)
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}
			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}

func arg(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
