package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"mangashelf/internal/sync"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	raw := flag.Bool("raw", false, "print events as received")
	flag.Parse()

	for {
		if err := run(*addr, *raw); err != nil {
			log.Printf("[sync-client] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func run(addr string, raw bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync-client] connected to %s", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()
		if raw {
			fmt.Println(string(line))
			continue
		}

		var ev sync.CollectionEvent
		if err := json.Unmarshal(line, &ev); err != nil || ev.At.IsZero() {
			// welcome banner or unknown payload
			fmt.Println(string(line))
			continue
		}
		fmt.Println(describe(ev))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func describe(ev sync.CollectionEvent) string {
	line := fmt.Sprintf("%s  %-15s  %d", ev.At.Local().Format(time.TimeOnly), ev.Type, ev.Count)
	if len(ev.IDs) > 0 {
		line += "  " + strings.Join(ev.IDs, ",")
	}
	return line
}
