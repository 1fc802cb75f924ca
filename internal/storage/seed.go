package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// ReadSeed reads fixture records from a JSON-lines file, one ShortLink per line.
func ReadSeed(path string) ([]ShortLink, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var links []ShortLink
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var link ShortLink
		if err := json.Unmarshal(scanner.Bytes(), &link); err != nil {
			return nil, fmt.Errorf("failed to parse seed line %d: %w", line, err)
		}
		links = append(links, link)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}
	return links, nil
}
