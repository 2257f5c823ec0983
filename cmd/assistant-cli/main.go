package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/edusphere/edusphere/internal/profile"
	"github.com/edusphere/edusphere/plugin/assistant"
	"github.com/edusphere/edusphere/store"
	"github.com/edusphere/edusphere/store/db"
)

// A local REPL that drives the assistant against a sqlite store, without
// the HTTP layer. Useful for trying intents and streaming by hand.
func main() {
	instanceProfile := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   ".",
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		slog.Error("invalid profile", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		slog.Error("failed to create db driver", slog.Any("error", err))
		os.Exit(1)
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		slog.Error("failed to migrate db", slog.Any("error", err))
		os.Exit(1)
	}
	defer storeInstance.Close()

	if err := seedCatalog(ctx, storeInstance); err != nil {
		slog.Warn("failed to seed catalog", slog.Any("error", err))
	}

	cfg := assistant.NewConfigFromProfile(instanceProfile)
	svc := assistant.NewService(cfg, storeInstance)
	key := "conversation:cli"

	fmt.Println("Assistant Edusphere. Tapez une question, ou /reset, ou /quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit":
			return
		case "/reset":
			if err := svc.Reset(ctx, key); err != nil {
				fmt.Printf("reset: %v\n", err)
			}
			continue
		}

		err := svc.HandleTurn(ctx, key, line, func(ev assistant.Event) {
			switch ev.Type {
			case assistant.EventTyping:
				fmt.Print("… ")
			case assistant.EventMessage:
				fmt.Printf("\r%s", ev.Text)
			case assistant.EventDone:
				fmt.Printf("\r%s\n", ev.Text)
				if ev.Navigation != nil {
					fmt.Printf("[navigation: %s]\n", ev.Navigation.View)
				}
				for _, course := range ev.Results {
					fmt.Printf("  - %s (%s, %.1f)\n", course.Title, course.Level, course.Rating)
				}
			}
		})
		if err != nil {
			fmt.Printf("erreur: %v\n", err)
		}
	}
}

func seedCatalog(ctx context.Context, st *store.Store) error {
	courses, err := st.ListCourses(ctx, &store.FindCourse{})
	if err != nil || len(courses) > 0 {
		return err
	}
	for _, course := range []*store.CourseRecord{
		{ID: 1, Title: "Mathématiques Avancées", Description: "Algèbre linéaire et analyse.", Category: "Mathématiques", Level: "Avancé", Rating: 4.8},
		{ID: 2, Title: "Programmation Python", Description: "Apprendre Python de zéro.", Category: "Informatique", Level: "Débutant", Rating: 4.9},
	} {
		if err := st.UpsertCourse(ctx, course); err != nil {
			return err
		}
	}
	return nil
}
