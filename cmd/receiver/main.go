// A standalone callback receiver for watching webhook deliveries during
// development: point registrations at /callback, /slow or /fail.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

var requestCount atomic.Int64

func main() {
	port := "6000"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}

	// Always succeeds, echoes the payload to stdout
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		body, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
		logRequest(r, count, 200)
		fmt.Printf("     payload: %s\n", body)

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	// Delays 10 seconds — longer than the delivery timeout
	http.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		time.Sleep(10 * time.Second)
		logRequest(r, count, 200)

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK (slow)")
	})

	// Always returns 500
	http.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		logRequest(r, count, 500)

		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "error")
	})

	// Shows the request count
	http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{"total_requests": requestCount.Load()})
	})

	log.Printf("Callback receiver starting on :%s", port)
	log.Printf("  POST /callback  -> 200 OK, prints payload")
	log.Printf("  POST /slow      -> 200 OK (10s delay)")
	log.Printf("  POST /fail      -> 500 Error")
	log.Printf("  GET  /stats     -> request count")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func logRequest(r *http.Request, count int64, status int) {
	fmt.Printf("[#%d] %s %s -> %d | event=%s id=%s\n",
		count,
		r.Method,
		r.URL.Path,
		status,
		r.Header.Get("X-Webhook-Event"),
		truncate(r.Header.Get("X-Webhook-ID"), 8),
	)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
