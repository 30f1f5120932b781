package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
)

// Generates the shared secrets the deployment needs: STATE_SECRET,
// DASHBOARD_SECRET, GAME_INGEST_KEY, SURFARI_WEBHOOK_SECRET.
func main() {
	size := flag.Int("bytes", 32, "secret length in bytes before encoding")
	count := flag.Int("n", 1, "number of secrets to generate")
	flag.Parse()

	for i := 0; i < *count; i++ {
		buf := make([]byte, *size)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("read random: %v", err)
		}
		fmt.Println(base64.RawURLEncoding.EncodeToString(buf))
	}
}
