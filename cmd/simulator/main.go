// Simulator drives a scripted collaboration against an in-process
// coordinator: two participants share a document, exchange updates and
// disconnect, with every delivered event echoed to the terminal.
package main

import (
	"collab-lab/domain"
	"collab-lab/domain/event"
	"collab-lab/runtime"
	"collab-lab/services"
	"collab-lab/sink"
	"fmt"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"WARN"`
	// SIM_BUFFER sizes each participant's delivery channel
	Buffer int `envconfig:"SIM_BUFFER" default:"16"`
	// SIM_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"SIM_COLOURS" default:"true"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Colours {
		color.Disable()
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	registry := runtime.NewRegistry()
	store := runtime.NewStore()
	router := runtime.NewRouter(log, registry, store, time.Second)
	coordinator := runtime.NewCoordinator(log, registry, store, router, 64)
	collab := services.NewCollabService(coordinator)

	alice := collab.Connect()
	bob := collab.Connect()

	aliceEvents := sink.NewChannelSink(cfg.Buffer, log)
	bobEvents := sink.NewChannelSink(cfg.Buffer, log)
	alice.Attach(aliceEvents)
	bob.Attach(bobEvents)

	color.Cyan.Printf("connected: %s (%s), %s (%s)\n\n",
		alice.Participant.DisplayName, alice.Participant.PresenceColor,
		bob.Participant.DisplayName, bob.Participant.PresenceColor)

	alice.Send([]byte(`{"type":"join-document","documentId":"doc1"}`))
	bob.Send([]byte(`{"type":"join-document","documentId":"doc1"}`))
	bob.Send([]byte(`{"type":"document-update","documentId":"doc1","content":"hello"}`))
	bob.Close()

	drain(alice.Participant.DisplayName, aliceEvents)
	drain(bob.Participant.DisplayName, bobEvents)

	if session, ok := store.Get("doc1"); ok {
		color.Green.Printf("\nfinal content of doc1: %q\n", session.Content)
		printMembers(registry, session)
	}
}

// drain prints everything a participant received during the script.
func drain(name string, events *sink.ChannelSink) {
	color.Yellow.Printf("--- events delivered to %s ---\n", name)
	for {
		select {
		case e := <-events.Events:
			describe(e)
		default:
			return
		}
	}
}

func describe(e event.Event) {
	switch evt := e.(type) {
	case event.DocumentContent:
		fmt.Printf("  %-18s content=%q members=%d\n", evt.Tag(), evt.Content, len(evt.Users))
	case event.UserJoined:
		fmt.Printf("  %-18s user=%s\n", evt.Tag(), evt.User.DisplayName)
	case event.DocumentUpdated:
		fmt.Printf("  %-18s content=%q by=%s\n", evt.Tag(), evt.Content, evt.UpdatedBy)
	case event.UserLeft:
		fmt.Printf("  %-18s userId=%d\n", evt.Tag(), evt.UserID)
	}
}

// printMembers renders the remaining membership with identity fields.
func printMembers(registry *runtime.Registry, session *domain.Session) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Display name", "Color", "Connected"})
	for _, id := range session.MemberIDs() {
		p, ok := registry.Lookup(id)
		if !ok {
			continue
		}
		table.Append([]string{
			fmt.Sprintf("%d", p.ID),
			p.DisplayName,
			p.PresenceColor,
			fmt.Sprintf("%t", p.Connected),
		})
	}
	table.Render()
}
