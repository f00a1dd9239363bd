// Package main provides admin management utilities for Melodia.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"melodia/internal/config"
	"melodia/internal/database"
	"melodia/internal/models"
	"melodia/internal/repository"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <user_id>     - Promote user to admin")
	fmt.Println("  go run ./cmd/admin demote <user_id>      - Demote user from admin")
	fmt.Println("  go run ./cmd/admin list-admins           - List all admins")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	users := repository.NewUserRepository(db)
	ctx := context.Background()

	switch command := os.Args[1]; command {
	case "promote", "demote":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: go run ./cmd/admin %s <user_id>\n", command)
			os.Exit(1)
		}
		id, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil || id == 0 {
			fmt.Printf("Invalid user ID %q\n", os.Args[2])
			os.Exit(1)
		}
		if err := setAdmin(ctx, users, uint(id), command == "promote"); err != nil {
			log.Fatalf("Failed to %s user: %v", command, err)
		}

	case "list-admins":
		if err := listAdmins(ctx, users); err != nil {
			log.Fatalf("Failed to fetch admins: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func displayName(u *models.User) string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.Email
}

func setAdmin(ctx context.Context, users repository.UserRepository, id uint, admin bool) error {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if user.IsAdmin == admin {
		state := "already an admin"
		if !admin {
			state = "not an admin"
		}
		fmt.Printf("User %s (ID: %d) is %s\n", displayName(user), user.ID, state)
		return nil
	}

	if err := users.SetAdmin(ctx, id, admin); err != nil {
		return err
	}

	verb := "promoted %s (ID: %d) to admin"
	if !admin {
		verb = "demoted %s (ID: %d) from admin"
	}
	fmt.Printf("✅ Successfully "+verb+"\n", displayName(user), user.ID)
	return nil
}

func listAdmins(ctx context.Context, users repository.UserRepository) error {
	admins, err := users.ListAdmins(ctx)
	if err != nil {
		return err
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return nil
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for i := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admins[i].ID, displayName(&admins[i]), admins[i].Email)
	}
	fmt.Println("─────────────────────────────────────")
	return nil
}
