package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/bodul/xwplay/xword"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "xwplay",
		Short:        "Play crosswords in the terminal or together in the browser",
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the multiplayer web server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("config", "", "TOML configuration file")
	serveCmd.Flags().String("addr", "", "listen address, overrides the configuration")

	playCmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a JSON or YAML puzzle in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := LoadPuzzleFile(args[0])
			if err != nil {
				return err
			}
			return runPlayer(p)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate puzzle files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}

	rootCmd.AddCommand(serveCmd, playCmd, checkCmd)
	return rootCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	store := NewStore()
	if cfg.PuzzleDir != "" {
		n, err := store.LoadPuzzleDir(cfg.PuzzleDir)
		if err != nil {
			log.Printf("Certaines grilles n'ont pas pu être chargées : %v", err)
		}
		log.Printf("%d grille(s) chargée(s) depuis %s", n, cfg.PuzzleDir)
	}

	ctx := context.Background()

	var gemini *GeminiClient
	if cfg.GCP.ProjectID != "" {
		gemini, err = NewGeminiClient(ctx, cfg.GCP)
		if err != nil {
			return fmt.Errorf("impossible d'initialiser Gemini : %w", err)
		}
		defer gemini.Close()
		log.Printf("Client Gemini initialisé (projet: %s, modèle: %s)", cfg.GCP.ProjectID, gemini.Model())
	} else {
		log.Println("GCP_PROJECT_ID non défini, analyse d'image désactivée")
	}

	srv := NewServer(store, gemini, cfg.Limits)

	log.Printf("Serveur démarré sur %s", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv)
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		p, err := LoadPuzzleFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, describePuzzle(p))
	}
	if failed > 0 {
		return fmt.Errorf("%d invalid puzzle file(s)", failed)
	}
	return nil
}

func describePuzzle(p *xword.Puzzle) string {
	title := p.Title
	if title == "" {
		title = "untitled"
	}
	across, down := len(p.Clues[xword.Across]), len(p.Clues[xword.Down])
	return fmt.Sprintf("%q %dx%d, %d clues (%d across, %d down)", title, p.Rows, p.Cols, across+down, across, down)
}
