package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/webintel"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Engine  webintel.Engine
	Agent   webintel.Agent
	Storage webintel.Storage
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" env:"WEBINTEL_VERBOSE" help:"Enable verbose logging"`

	Crawl   CrawlCmd   `cmd:"" help:"Crawl a website into structured content"`
	Ask     AskCmd     `cmd:"" help:"Ask a question about crawled content"`
	Chat    ChatCmd    `cmd:"" help:"Start an interactive session over crawled content"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL       string   `arg:"" help:"URL to crawl"`
	Depth     int      `short:"d" default:"1" help:"Crawl depth"`
	MaxPages  int      `short:"m" name:"max-pages" help:"Maximum pages to crawl (0 = no limit)"`
	Output    string   `short:"o" help:"Data directory for results"`
	Format    string   `short:"f" default:"markdown" help:"Output format (markdown, json)"`
	Engine    string   `default:"colly" env:"WEBINTEL_ENGINE" help:"Crawl engine (colly, http, rod)"`
	Extractor string   `default:"trafilatura" env:"WEBINTEL_EXTRACTOR" help:"Content extractor (trafilatura, readability)"`
	Storage   string   `default:"file" env:"WEBINTEL_STORAGE" help:"Storage backend (file, sqlite)"`
	Filter    []string `short:"F" name:"filter" help:"Filter URLs by regex (repeatable)"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question  string `arg:"" help:"Question to ask about the content"`
	Source    string `short:"s" required:"" help:"Source file containing crawled content"`
	Session   string `help:"Session ID for conversation continuity"`
	Model     string `env:"WEBINTEL_MODEL" help:"Override the default model"`
	Stream    bool   `help:"Stream the response as it is generated"`
	Agent     string `default:"ollama" env:"WEBINTEL_AGENT" help:"Agent backend (ollama, gemini)"`
	MaxTokens int    `name:"max-tokens" help:"Context budget in tokens"`
	Storage   string `default:"file" env:"WEBINTEL_STORAGE" help:"Storage backend (file, sqlite)"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Source  string `short:"s" required:"" help:"Source file containing crawled content"`
	Session string `help:"Session ID for this conversation"`
	Model   string `env:"WEBINTEL_MODEL" help:"Override the default model"`
	Agent   string `default:"ollama" env:"WEBINTEL_AGENT" help:"Agent backend (ollama, gemini)"`
	Storage string `default:"file" env:"WEBINTEL_STORAGE" help:"Storage backend (file, sqlite)"`
}

// VersionCmd is the "version" subcommand.
type VersionCmd struct{}
