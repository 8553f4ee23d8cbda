package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"mangashelf/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

// envelope is the shape of every API response.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type importResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

func main() {
	global := flag.NewFlagSet("mangashelf", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	rest := []string{}
	if len(args) > 1 {
		sub = args[1]
		rest = args[2:]
	}

	client := &http.Client{Timeout: 30 * time.Second}

	switch cmd {
	case "manga":
		handleManga(ctx, client, *baseURL, sub, rest)
	case "sync":
		handleSync(*baseURL, sub, rest)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleManga(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("manga list", flag.ExitOnError)
		search := fs.String("search", "", "free text search over title, author and genre")
		genre := fs.String("genre", "", "genre substring")
		author := fs.String("author", "", "exact author")
		publisher := fs.String("publisher", "", "exact publisher")
		language := fs.String("language", "", "exact language")
		volume := fs.String("volume", "", "exact volume")
		status := fs.String("status", "", "read|unread|double|newbuy")
		sortKey := fs.String("sort", "", "sort key, e.g. title")
		order := fs.String("order", "asc", "asc|desc")
		page := fs.Int("page", 1, "page number")
		pageSize := fs.Int("page-size", 20, "page size")
		_ = fs.Parse(args)

		qv := url.Values{}
		setIf(qv, "search", *search)
		setIf(qv, "genre", *genre)
		setIf(qv, "author", *author)
		setIf(qv, "publisher", *publisher)
		setIf(qv, "language", *language)
		setIf(qv, "volume", *volume)
		setIf(qv, "status", *status)
		if *sortKey != "" {
			qv.Set("sortKey", *sortKey)
			qv.Set("sortDirection", *order)
		}
		qv.Set("page", strconv.Itoa(*page))
		qv.Set("pageSize", strconv.Itoa(*pageSize))

		var resp models.Page
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/manga?"+qv.Encode(), nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printTable(resp)
	case "show":
		id := requireID("manga show", args)
		var resp models.Manga
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/manga/"+url.PathEscape(id), nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "add":
		fs := flag.NewFlagSet("manga add", flag.ExitOnError)
		payload := mangaFlags(fs)
		isbnLookup := fs.Bool("lookup", false, "fill empty fields from the ISBN metadata lookup")
		_ = fs.Parse(args)
		body := payload.set(fs)

		if *isbnLookup {
			if isbn, _ := body["isbn"].(string); isbn != "" {
				var md models.Metadata
				if err := doJSON(ctx, client, http.MethodGet, baseURL+"/manga/isbn?isbn="+url.QueryEscape(isbn), nil, &md); err != nil {
					log.Printf("isbn lookup failed: %v", err)
				} else {
					fillFromMetadata(body, md)
				}
			}
		}

		var resp models.Manga
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/manga", body, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "update":
		fs := flag.NewFlagSet("manga update", flag.ExitOnError)
		id := fs.String("id", "", "manga id")
		payload := mangaFlags(fs)
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("manga id is required")
		}
		body := payload.set(fs)
		if len(body) == 0 {
			log.Fatal("nothing to update")
		}

		var resp models.Manga
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/manga/"+url.PathEscape(*id), body, &resp); err != nil {
			log.Fatalf("update failed: %v", err)
		}
		printJSON(resp)
	case "delete":
		id := requireID("manga delete", args)
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/manga/"+url.PathEscape(id), nil, nil); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("✅ deleted", id)
	case "bulk-delete":
		fs := flag.NewFlagSet("manga bulk-delete", flag.ExitOnError)
		ids := fs.String("ids", "", "comma-separated manga ids")
		_ = fs.Parse(args)

		var list []string
		for _, id := range strings.Split(*ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				list = append(list, id)
			}
		}
		var resp struct {
			Deleted int `json:"deleted"`
		}
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/manga/bulk-delete", map[string]any{"ids": list}, &resp); err != nil {
			log.Fatalf("bulk delete failed: %v", err)
		}
		fmt.Printf("✅ %d manga deleted\n", resp.Deleted)
	case "stats":
		var resp models.Stats
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/manga/stats", nil, &resp); err != nil {
			log.Fatalf("stats failed: %v", err)
		}
		printJSON(resp)
	case "facets":
		var resp models.Facets
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/manga/facets", nil, &resp); err != nil {
			log.Fatalf("facets failed: %v", err)
		}
		printJSON(resp)
	case "isbn":
		fs := flag.NewFlagSet("manga isbn", flag.ExitOnError)
		isbn := fs.String("isbn", "", "ISBN to look up")
		_ = fs.Parse(args)
		if *isbn == "" {
			log.Fatal("isbn is required")
		}
		var resp models.Metadata
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/manga/isbn?isbn="+url.QueryEscape(*isbn), nil, &resp); err != nil {
			log.Fatalf("lookup failed: %v", err)
		}
		printJSON(resp)
	case "import":
		fs := flag.NewFlagSet("manga import", flag.ExitOnError)
		file := fs.String("file", "", "path to an .xlsx file")
		_ = fs.Parse(args)
		if *file == "" {
			log.Fatal("file is required")
		}
		var resp importResult
		if err := uploadFile(ctx, client, baseURL+"/manga/import", *file, &resp); err != nil {
			log.Fatalf("import failed: %v", err)
		}
		fmt.Printf("✅ imported %d manga\n", resp.Imported)
		for _, e := range resp.Errors {
			fmt.Println("  ⚠", e)
		}
	case "export":
		fs := flag.NewFlagSet("manga export", flag.ExitOnError)
		out := fs.String("out", "manga-collection.xlsx", "output path")
		_ = fs.Parse(args)
		if err := download(ctx, client, baseURL+"/manga/export", *out); err != nil {
			log.Fatalf("export failed: %v", err)
		}
		fmt.Println("✅ exported to", *out)
	default:
		log.Fatal("usage: mangashelf manga <list|show|add|update|delete|bulk-delete|stats|facets|isbn|import|export>")
	}
}

func handleSync(baseURL, sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("sync listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP sync server address")
		_ = fs.Parse(args)
		if err := runSyncTCP(*addr); err != nil {
			log.Fatalf("sync listen failed: %v", err)
		}
	case "watch":
		wsURL, err := websocketURL(baseURL, "/ws")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		if err := runWebSocket(wsURL); err != nil {
			log.Fatalf("sync watch failed: %v", err)
		}
	default:
		log.Fatal("usage: mangashelf sync <listen|watch>")
	}
}

// mangaPayload holds the record flags shared by add and update.
type mangaPayload struct {
	title, volume, genre, author, publisher, isbn, language, cover *string
	read, double, newBuy                                           *bool
}

func mangaFlags(fs *flag.FlagSet) *mangaPayload {
	return &mangaPayload{
		title:     fs.String("title", "", "title"),
		volume:    fs.String("volume", "", "volume"),
		genre:     fs.String("genre", "", "comma-separated genres"),
		author:    fs.String("author", "", "author"),
		publisher: fs.String("publisher", "", "publisher"),
		isbn:      fs.String("isbn", "", "ISBN"),
		language:  fs.String("language", "", "language"),
		cover:     fs.String("cover", "", "cover image URL"),
		read:      fs.Bool("read", false, "already read"),
		double:    fs.Bool("double", false, "owned twice"),
		newBuy:    fs.Bool("newbuy", false, "on the wish list"),
	}
}

// set returns only the flags given on the command line, so updates keep
// their merge semantics.
func (p *mangaPayload) set(fs *flag.FlagSet) map[string]any {
	names := map[string]string{
		"title": "title", "volume": "volume", "genre": "genre", "author": "author",
		"publisher": "publisher", "isbn": "isbn", "language": "language", "cover": "coverImageUrl",
		"read": "isRead", "double": "isDuplicate", "newbuy": "wantToBuy",
	}
	values := map[string]any{
		"title": *p.title, "volume": *p.volume, "genre": *p.genre, "author": *p.author,
		"publisher": *p.publisher, "isbn": *p.isbn, "language": *p.language, "cover": *p.cover,
		"read": *p.read, "double": *p.double, "newbuy": *p.newBuy,
	}

	body := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		if key, ok := names[f.Name]; ok {
			body[key] = values[f.Name]
		}
	})
	return body
}

func fillFromMetadata(body map[string]any, md models.Metadata) {
	fill := func(key, v string) {
		if cur, _ := body[key].(string); cur == "" && v != "" {
			body[key] = v
		}
	}
	fill("title", md.Title)
	fill("author", md.Author)
	fill("publisher", md.Publisher)
	fill("genre", md.Genre)
	fill("coverImageUrl", md.CoverImageURL)
}

func requireID(name string, args []string) string {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("id", "", "manga id")
	_ = fs.Parse(args)
	if *id == "" {
		log.Fatal("manga id is required")
	}
	return *id
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func runSyncTCP(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		fmt.Println(sc.Text())
	}
	return sc.Err()
}

func runWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Print(string(msg))
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(client, req, out)
}

func uploadFile(ctx context.Context, client *http.Client, endpoint, path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return send(client, req, out)
}

func send(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%s %s: unexpected response: %s", req.Method, req.URL, strings.TrimSpace(string(data)))
	}
	if resp.StatusCode >= 300 {
		if env.Error == "" {
			env.Error = resp.Status
		}
		return errors.New(env.Error)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func download(ctx context.Context, client *http.Client, endpoint, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", endpoint, resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printTable(p models.Page) {
	fmt.Printf("page %d/%d, %d total\n", p.Page, p.TotalPages, p.Total)
	for _, m := range p.Items {
		flags := ""
		if m.IsRead {
			flags += "R"
		}
		if m.IsDuplicate {
			flags += "D"
		}
		if m.WantToBuy {
			flags += "W"
		}
		fmt.Printf("%-36s  %-30s  %4s  %-20s  %s\n", m.ID, m.Title, m.Volume, m.Author, flags)
	}
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("mangashelf [-api URL] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  manga list|show|add|update|delete|bulk-delete|stats|facets|isbn|import|export")
	fmt.Println("  sync listen|watch")
}
