package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// ingest is a small loader for seeding the corpus from the command
// line: it reads a .txt or .pdf file and posts the text to the API.
func main() {
	var (
		file   = flag.String("file", "", "path to a .txt or .pdf file to ingest")
		source = flag.String("source", "", "source label stored with the chunks (defaults to the file name)")
		addr   = flag.String("addr", "http://localhost:8080", "base URL of the API")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -file <path> [-source <label>] [-addr <url>]")
		os.Exit(2)
	}

	text, err := readDocument(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *file, err)
		os.Exit(1)
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintf(os.Stderr, "no text extracted from %s\n", *file)
		os.Exit(1)
	}

	label := *source
	if label == "" {
		label = filepath.Base(*file)
	}

	body, err := json.Marshal(map[string]string{"text": text, "source": label})
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Post(*addr+"/api/ingest", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "post ingest: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "ingest failed: %s: %s\n", resp.Status, strings.TrimSpace(string(out)))
		os.Exit(1)
	}
	fmt.Println(strings.TrimSpace(string(out)))
}

func readDocument(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return readPDF(path)
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

func readPDF(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}
