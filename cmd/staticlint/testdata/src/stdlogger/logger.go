package stdlogger

import (
	"fmt"
	"log"
)

func report(err error) {
	log.Printf("failed: %v", err) // want `standard library log call log.Printf, use the zap logger`
	fmt.Println(err)
}

func fatal() {
	log.Fatal("boom") // want `standard library log call log.Fatal`
}
