// studioctl exercises a running studio server from the command line:
// submit a prompt, watch the job, list the gallery.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"manim-studio/pkg/client"
)

func main() {
	baseURL := flag.String("server", "http://localhost:8000", "studio server base URL")
	timeout := flag.Duration("timeout", 5*time.Minute, "how long to wait for a generation")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	api := client.New(*baseURL)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch flag.Arg(0) {
	case "health":
		if err := api.Health(ctx); err != nil {
			log.Fatalf("health: %v", err)
		}
		fmt.Println("ok")

	case "examples":
		items, err := api.Examples(ctx)
		if err != nil {
			log.Fatalf("examples: %v", err)
		}
		for _, it := range items {
			fmt.Printf("%-12s %-30s %s\n", it.Category, it.Title, it.VideoURL)
		}

	case "generate":
		if flag.NArg() < 2 {
			usage()
		}
		generate(ctx, api, flag.Arg(1))

	case "render":
		if flag.NArg() < 2 {
			usage()
		}
		res, err := api.RenderSync(ctx, flag.Arg(1), "")
		if err != nil {
			log.Fatalf("render: %v", err)
		}
		fmt.Printf("video: %s (scene %s, %s)\n", res.VideoURL, res.SceneName, res.Method)

	default:
		usage()
	}
}

// generate drives the polling controller and prints progress as it moves.
func generate(ctx context.Context, api *client.Client, prompt string) {
	done := make(chan client.State, 1)
	ctrl := client.NewController(api,
		client.WithPollInterval(time.Second),
		client.WithOnChange(func(s client.State) {
			switch s.Status {
			case client.StatusCompleted, client.StatusError:
				select {
				case done <- s:
				default:
				}
			default:
				fmt.Printf("[%3d%%] %s\n", s.Progress, s.CurrentStep)
			}
		}),
	)

	ctrl.Generate(ctx, prompt, "")

	select {
	case <-ctx.Done():
		ctrl.Reset()
		log.Fatal("timed out waiting for generation")
	case final := <-done:
		if final.Status == client.StatusError {
			log.Fatalf("generation failed: %s", final.Err)
		}
		fmt.Printf("video: %s (scene %s, %s)\n",
			final.Result.VideoURL, final.Result.SceneName, final.Result.Method)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: studioctl [flags] <command>

commands:
  health               check the server
  examples             list the gallery
  generate "<prompt>"  submit a prompt and poll until done
  render   "<prompt>"  render synchronously (blocks)`)
	os.Exit(2)
}
