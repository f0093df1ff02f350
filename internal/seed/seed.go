// Package seed populates the store with deterministic mock users and
// products so read benchmarks have a realistic keyspace to hit.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/redlens/redlens/internal/store"
)

// batchSize bounds pipeline payloads so store buffers stay comfortable.
const batchSize = 500

var firstNames = []string{
	"Emma", "Liam", "Olivia", "Noah", "Ava", "Ethan", "Sophia", "Mason",
	"Isabella", "William", "Mia", "James", "Charlotte", "Benjamin", "Amelia",
	"Lucas", "Harper", "Henry", "Evelyn", "Alexander", "Abigail", "Daniel",
	"Emily", "Michael", "Elizabeth", "Owen", "Sofia", "Sebastian", "Avery", "Jack",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	"Ramirez", "Lewis", "Robinson",
}

var roles = []string{"admin", "editor", "viewer"}

var productAdjectives = []string{
	"Premium", "Ultra", "Wireless", "Smart", "Compact", "Professional",
	"Ergonomic", "Portable", "Advanced", "Digital", "Classic", "Modern",
	"Elite", "Turbo", "Nano", "Dual", "Mini", "Pro", "Max", "Super",
}

var productNouns = []string{
	"Keyboard", "Mouse", "Monitor", "Headphones", "Speaker", "Camera",
	"Microphone", "Tablet", "Charger", "Adapter", "Hub", "Cable", "Stand",
	"Light", "Webcam", "Router", "Drive", "Dock", "Controller", "Sensor",
}

var productCategories = []string{
	"electronics", "accessories", "audio", "computing", "peripherals",
	"networking", "storage", "gadgets", "office", "gaming",
}

// Run seeds the store according to the profile. The RNG is fixed-seeded so
// repeated runs produce identical data.
func Run(ctx context.Context, st store.Store, p Profile) error {
	p.normalize()
	rng := rand.New(rand.NewSource(p.RandSeed))

	if err := seedUsers(ctx, st, rng, p.Users); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := seedProducts(ctx, st, rng, p.Products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}

func seedUsers(ctx context.Context, st store.Store, rng *rand.Rand, count int) error {
	for start := 0; start < count; start += batchSize {
		end := start + batchSize
		if end > count {
			end = count
		}
		batch := make(map[string]map[string]string, end-start)
		for i := start; i < end; i++ {
			id := fmt.Sprintf("usr_%08d", i+1)
			batch["user:"+id] = userFields(rng, id, i+1)
		}
		if err := writeHashBatch(ctx, st, batch); err != nil {
			return err
		}
	}
	return nil
}

func userFields(rng *rand.Rand, id string, ordinal int) map[string]string {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	theme := "light"
	if rng.Intn(2) == 0 {
		theme = "dark"
	}
	notifications := rng.Intn(10) < 7
	return map[string]string{
		"id":    id,
		"name":  first + " " + last,
		"email": fmt.Sprintf("%s.%s%d@example.com", lower(first), lower(last), ordinal),
		"role":  roles[rng.Intn(len(roles))],
		"prefs": fmt.Sprintf(`{"theme":%q,"lang":"en","notifications":%t}`,
			theme, notifications),
		"created_at": "2025-01-15T09:23:11Z",
	}
}

func seedProducts(ctx context.Context, st store.Store, rng *rand.Rand, count int) error {
	batch := make(map[string]map[string]string, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("prod_%04d", i+1)
		adj := productAdjectives[rng.Intn(len(productAdjectives))]
		noun := productNouns[rng.Intn(len(productNouns))]
		category := productCategories[rng.Intn(len(productCategories))]
		batch["product:"+id] = map[string]string{
			"id":       id,
			"title":    adj + " " + noun,
			"price":    fmt.Sprint(rng.Intn(99_001) + 999), // cents
			"stock":    fmt.Sprint(rng.Intn(1001)),
			"category": category,
			"description": fmt.Sprintf(
				"High-quality %s %s with advanced features. Perfect for %s use. "+
					"Built with premium materials for long-lasting durability and peak performance.",
				lower(adj), lower(noun), category),
		}
	}
	return writeHashBatch(ctx, st, batch)
}

// writeHashBatch pipelines when the store supports it, otherwise issues
// individual commands.
func writeHashBatch(ctx context.Context, st store.Store, batch map[string]map[string]string) error {
	if b, ok := st.(store.Batcher); ok {
		return b.Pipeline(ctx, func(p store.Pipeliner) error {
			for key, fields := range batch {
				p.SetFields(key, fields)
			}
			return nil
		})
	}
	for key, fields := range batch {
		if err := st.SetFields(ctx, key, fields); err != nil {
			return err
		}
	}
	return nil
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
