package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	u "github.com/araddon/gou"
	"github.com/manifoldco/promptui"

	"github.com/geange/automaton-editor/diagram"
	"github.com/geange/automaton-editor/internal/api"
	"github.com/geange/automaton-editor/internal/config"
	"github.com/geange/automaton-editor/internal/repl"
	"github.com/geange/automaton-editor/session"
)

var (
	configFile *string = flag.String("config", "", "editor config file (TOML)")
	logLevel   *string = flag.String("loglevel", "", "log level [debug|info|warn|error], overrides the config file")
	listen     *string = flag.String("listen", "", "HTTP listen address, overrides the config file")
	serve      *bool   = flag.Bool("serve", false, "serve the HTTP API instead of the interactive shell")
)

func main() {
	flag.Parse()

	conf := config.Default()
	if *configFile != "" {
		var err error
		conf, err = config.LoadConfigFromFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not load config: %v\n", err)
			os.Exit(1)
		}
	}
	if *logLevel != "" {
		conf.LogLevel = *logLevel
	}
	if *listen != "" {
		conf.Listen = *listen
	}

	u.SetupLogging(conf.LogLevel)
	u.SetColorIfTerminal()

	sess := session.New(session.Options{WorkLimit: conf.WorkLimit, TrapState: conf.TrapState})
	switch {
	case conf.Automaton != nil:
		if _, err := sess.Load(conf.Automaton.Definition()); err != nil {
			u.Errorf("Could not load automaton from %s: %v", *configFile, err)
			os.Exit(1)
		}
	case conf.LoadSample:
		sess.LoadSample()
	}

	if *serve {
		runServer(sess, conf)
		return
	}
	runShell(sess)
}

func runServer(sess *session.Session, conf *config.Config) {
	renderer := diagram.NewRenderer(conf.Diagram.DotPath, conf.Diagram.Format, conf.Diagram.Timeout())
	if !renderer.Available() {
		u.Warnf("graphviz %q not found, diagram images are disabled", conf.Diagram.DotPath)
	}

	srv := api.NewServer(sess, api.ServerOptions{
		Addr:     conf.Listen,
		Renderer: renderer,
	})
	srv.Start()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sc
	u.Infof("Got signal [%v] to exit.", sig)
	if err := srv.Stop(context.Background()); err != nil {
		u.Errorf("graceful shutdown error: %v", err)
	}
	u.Infof("stopped")
}

func runShell(sess *session.Session) {
	sh := repl.New(sess, os.Stdout)
	fmt.Println("Type help for the command list.")
	for {
		prompt := promptui.Prompt{
			Label: sess.Mode().String(),
		}
		line, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return
		}
		if err != nil {
			u.Errorf("Prompt failed: %v", err)
			return
		}

		quit, err := sh.Exec(line)
		if err != nil {
			fmt.Println(promptui.Styler(promptui.FGRed)(err.Error()))
		}
		if quit {
			return
		}
	}
}
