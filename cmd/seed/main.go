// Package main provides a tool to seed the database with demo CRM data.
//
// This creates a demo user with tags and contacts spread over the last
// weeks so the dashboard has something to show, and prints a token that
// can be used against a server running with the same data path.
//
// Usage:
//
//	DATA_PATH=~/ContactDock/data go run ./cmd/seed
//	DATA_PATH=~/ContactDock/data go run ./cmd/seed --contacts 200
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/contactdock/contactdock-server/internal/domain"
	"github.com/contactdock/contactdock-server/internal/id"
	"github.com/contactdock/contactdock-server/internal/identity"
	"github.com/contactdock/contactdock-server/internal/store"
)

var (
	contactCount = flag.Int("contacts", 60, "Number of contacts to create")
	email        = flag.String("email", "demo@contactdock.dev", "Demo user email")
)

var firstNames = []string{
	"Alice", "Bruno", "Carla", "Diego", "Elena", "Felix", "Greta", "Hugo",
	"Iris", "Jonas", "Klara", "Luis", "Mara", "Nils", "Olga", "Pavel",
}

var lastNames = []string{
	"Adler", "Berger", "Costa", "Dietrich", "Ebert", "Fischer", "Gruber",
	"Hansen", "Ivanov", "Jensen", "Keller", "Lorenz", "Meier", "Novak",
}

var companies = []string{
	"Acme Corp", "Globex", "Initech", "Umbrella", "Stark Industries",
	"Wayne Enterprises", "", "", "Hooli", "Pied Piper",
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/ContactDock/data")
	}

	fmt.Printf("Seeding data at: %s\n", dataPath)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.New(filepath.Join(dataPath, "db"), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	ctx := context.Background()

	user, err := seedUser(ctx, s, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("User: %s (%s)\n", user.Email, user.ID)

	tags, err := seedTags(ctx, s, user.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed tags: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Tags: %d\n", len(tags))

	created, err := seedContacts(ctx, s, user.ID, tags, *contactCount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed contacts: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Contacts: %d\n", created)

	printToken(dataPath, user)
}

func seedUser(ctx context.Context, s *store.Store, email string) (*domain.User, error) {
	email = store.NormalizeEmail(email)

	if existing, err := s.GetUserByEmail(ctx, email); err == nil {
		return existing, nil
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		SubjectID:   "seed-" + userID,
		Email:       email,
		DisplayName: "Demo User",
		Provider:    "seed",
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.Users.Create(ctx, user.ID, user); err != nil {
		return nil, err
	}
	return user, nil
}

func seedTags(ctx context.Context, s *store.Store, ownerID string) ([]*domain.Tag, error) {
	specs := []struct {
		name  string
		color string
	}{
		{"Customer", "#10B981"},
		{"Lead", "#F59E0B"},
		{"Partner", "#8B5CF6"},
		{"VIP", "#EF4444"},
	}

	tags := make([]*domain.Tag, 0, len(specs))
	for _, spec := range specs {
		if existing, err := s.GetTagByName(ctx, ownerID, spec.name); err == nil {
			tags = append(tags, existing)
			continue
		}

		tagID, err := id.Generate(id.PrefixTag)
		if err != nil {
			return nil, err
		}
		tag := &domain.Tag{
			OwnerID: ownerID,
			Name:    spec.name,
			Color:   spec.color,
		}
		tag.ID = tagID
		tag.InitTimestamps()

		if err := s.CreateTag(ctx, tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func seedContacts(ctx context.Context, s *store.Store, ownerID string, tags []*domain.Tag, count int) (int, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := 0

	for i := 0; i < count; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		addr := fmt.Sprintf("%s.%s.%d@example.com", first, last, i)

		contactID, err := id.Generate(id.PrefixContact)
		if err != nil {
			return created, err
		}

		contact := &domain.Contact{
			OwnerID: ownerID,
			Name:    first + " " + last,
			Email:   store.NormalizeEmail(addr),
			Company: companies[rng.Intn(len(companies))],
		}
		contact.ID = contactID

		// Spread creation over the last 45 days so the dashboard
		// timeline and weekly counter have structure.
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(45))
		contact.CreatedAt = createdAt
		contact.UpdatedAt = createdAt

		for _, tag := range tags {
			if rng.Intn(3) == 0 {
				contact.TagIDs = append(contact.TagIDs, tag.ID)
			}
		}

		if err := s.CreateContact(ctx, contact); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// printToken mints a login token against the local identity key so the
// seeded user can be used immediately against a dev server.
func printToken(dataPath string, user *domain.User) {
	keyHex, err := identity.LoadOrGenerateKeyHex(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Skipping token: %v\n", err)
		return
	}

	verifier, err := identity.NewVerifier(identity.Config{
		KeyHex:   keyHex,
		Issuer:   "contactdock-identity",
		Audience: "contactdock-server",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Skipping token: %v\n", err)
		return
	}

	token, err := verifier.Issue(identity.Claims{
		Subject:  user.SubjectID,
		Email:    user.Email,
		Name:     user.DisplayName,
		Provider: user.Provider,
	}, 24*time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Skipping token: %v\n", err)
		return
	}

	fmt.Printf("\nDev token (24h):\n%s\n", token)
}
