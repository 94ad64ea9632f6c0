// Command agrilab-cli downloads a session's test reports in bulk from a
// lab server. Reports arrive over one streamed connection and are saved
// to the output directory, one PDF per sample, named after the farmer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/agrilab/agrilab-go/internal/client"
	"github.com/agrilab/agrilab-go/internal/progress"
)

const version = "1.2.0"

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Lab server base URL")
	username := flag.String("user", "", "Username to log in with")
	password := flag.String("pass", "", "Password to log in with")
	sessionID := flag.Int64("session", 0, "ID of the session whose reports to download")
	outDir := flag.String("out", "./reports", "Directory to save reports into")
	flag.Parse()

	if *username == "" || *password == "" || *sessionID == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Cancel the in-flight download cleanly on Ctrl-C. The server stops
	// at the next report boundary; everything already received is kept.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := client.New(*serverURL, version)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	c.Tracker().SetNotify(func(snap progress.Snapshot) {
		switch {
		case snap.Errored:
			fmt.Printf("\nDownload failed: %s\n", snap.ErrorMessage)
		case snap.Completed:
			fmt.Printf("\rDownloaded %d of %d reports.\n", snap.Current, snap.Total)
		case snap.Active:
			fmt.Printf("\r[%d/%d] %s", snap.Current, snap.Total, snap.CurrentName)
		}
	})

	if err := c.Connect(ctx); err != nil {
		log.Fatalf("Could not reach server at %s: %v", *serverURL, err)
	}
	if err := c.Login(ctx, *username, *password); err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	result, err := c.DownloadSessionReports(ctx, *sessionID, *outDir)
	if err != nil {
		log.Fatalf("Download failed: %v", err)
	}

	fmt.Printf("Saved %d reports to %s", result.Saved, *outDir)
	if missing := result.Requested - result.Received; missing > 0 {
		fmt.Printf(" (%d of %d missing)", missing, result.Requested)
	}
	if result.Dropped > 0 {
		fmt.Printf(" (%d malformed parts dropped)", result.Dropped)
	}
	fmt.Println()
}
