// Package main provides a tool to seed the database with demo recipe data.
//
// It creates a handful of demo users and recipes with tags and ingredients,
// useful for exercising list filtering and search locally.
//
// Usage:
//
//	DATA_PATH=~/recipe-api/data go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	domainerrors "github.com/yeungho415/recipe/internal/errors"
	"github.com/yeungho415/recipe/internal/service"
	"github.com/yeungho415/recipe/internal/store/sqlite"
)

const seedPassword = "changeme123"

type seedUser struct {
	email   string
	name    string
	recipes []service.CreateRecipeRequest
}

var seedUsers = []seedUser{
	{
		email: "chef@example.com",
		name:  "Demo Chef",
		recipes: []service.CreateRecipeRequest{
			{
				Title:       "Tomato Soup",
				TimeMinutes: 25,
				Price:       "3.50",
				Description: "A simple soup from canned tomatoes and a little cream.",
				Tags:        []service.TagInput{{Name: "Soup"}, {Name: "Quick"}},
				Ingredients: []service.IngredientInput{{Name: "Tomato"}, {Name: "Cream"}, {Name: "Onion"}},
			},
			{
				Title:       "Thai Green Curry",
				TimeMinutes: 40,
				Price:       "7.25",
				Description: "Fragrant curry with green paste, coconut milk, and vegetables.",
				Link:        "https://example.com/thai-green-curry",
				Tags:        []service.TagInput{{Name: "Thai"}, {Name: "Dinner"}},
				Ingredients: []service.IngredientInput{{Name: "Coconut Milk"}, {Name: "Green Curry Paste"}, {Name: "Rice"}},
			},
			{
				Title:       "Overnight Oats",
				TimeMinutes: 5,
				Price:       "1.80",
				Description: "Mix the night before, eat straight from the fridge.",
				Tags:        []service.TagInput{{Name: "Breakfast"}, {Name: "Quick"}},
				Ingredients: []service.IngredientInput{{Name: "Oats"}, {Name: "Milk"}, {Name: "Honey"}},
			},
		},
	},
	{
		email: "baker@example.com",
		name:  "Demo Baker",
		recipes: []service.CreateRecipeRequest{
			{
				Title:       "Apple Pie",
				TimeMinutes: 90,
				Price:       "6.00",
				Description: "Classic double-crust pie with cinnamon apples.",
				Tags:        []service.TagInput{{Name: "Dessert"}, {Name: "Baking"}},
				Ingredients: []service.IngredientInput{{Name: "Apple"}, {Name: "Flour"}, {Name: "Butter"}},
			},
			{
				Title:       "Sourdough Loaf",
				TimeMinutes: 240,
				Price:       "2.40",
				Description: "Slow-fermented loaf. Most of the time is waiting.",
				Tags:        []service.TagInput{{Name: "Baking"}},
				Ingredients: []service.IngredientInput{{Name: "Flour"}, {Name: "Water"}, {Name: "Salt"}},
			},
		},
	},
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/recipe-api/data")
	}

	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataPath, "recipe.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	userService := service.NewUserService(store, logger)
	// No search index here: the server rebuilds an empty index on startup.
	recipeService := service.NewRecipeService(store, nil, nil, logger)

	ctx := context.Background()
	created := 0

	for _, su := range seedUsers {
		user, err := userService.Register(ctx, service.RegisterRequest{
			Email:    su.email,
			Password: seedPassword,
			Name:     su.name,
		})
		if err != nil {
			if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
				fmt.Printf("User %s already exists, skipping\n", su.email)
				continue
			}
			log.Fatalf("Failed to create user %s: %v", su.email, err)
		}

		fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)

		for _, req := range su.recipes {
			recipe, err := recipeService.CreateRecipe(ctx, user.ID, req)
			if err != nil {
				log.Fatalf("Failed to create recipe %q: %v", req.Title, err)
			}
			fmt.Printf("  Created recipe %q (%s)\n", recipe.Title, recipe.ID)
			created++
		}
	}

	fmt.Printf("\nSeeded %d recipes. Login with password %q\n", created, seedPassword)
}
