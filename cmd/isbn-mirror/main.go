package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
)

// Serves data/openlibrary.json in the Open Library books API shape so the
// metadata resolver can run offline (MANGASHELF_OPEN_LIBRARY_URL=http://localhost:9000).
func main() {
	addr := flag.String("addr", ":9000", "listen address")
	dataPath := flag.String("data", "data/openlibrary.json", "ISBN keyed book records")
	flag.Parse()

	http.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		b, err := os.ReadFile(*dataPath)
		if err != nil {
			http.Error(w, "cannot read mirror data: "+err.Error(), http.StatusInternalServerError)
			return
		}
		var books map[string]json.RawMessage
		if err := json.Unmarshal(b, &books); err != nil {
			http.Error(w, "mirror data invalid JSON: "+err.Error(), http.StatusInternalServerError)
			return
		}

		out := map[string]json.RawMessage{}
		for _, key := range strings.Split(r.URL.Query().Get("bibkeys"), ",") {
			isbn := strings.TrimPrefix(strings.TrimSpace(key), "ISBN:")
			if book, ok := books[isbn]; ok {
				out["ISBN:"+isbn] = book
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			log.Printf("isbn-mirror: write response: %v", err)
		}
	})

	log.Printf("isbn-mirror listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
