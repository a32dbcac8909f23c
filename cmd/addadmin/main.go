package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"powerpulse/config"
	"powerpulse/db"
)

// Promotes an existing user to admin by flipping the persisted role flag.
func main() {
	email := flag.String("email", "", "User email (required)")
	configPath := flag.String("config", "config/config.yml", "Path to config file")
	demote := flag.Bool("demote", false, "Remove the admin flag instead")
	flag.Parse()

	if *email == "" {
		fmt.Println("Error: email is required")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := db.GetCollection(db.UsersCollection).UpdateOne(ctx,
		bson.M{"email": *email},
		bson.M{"$set": bson.M{"isAdmin": !*demote, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}
	if result.MatchedCount == 0 {
		log.Fatalf("No user found with email %s", *email)
	}

	if *demote {
		fmt.Printf("Removed admin flag from %s\n", *email)
	} else {
		fmt.Printf("Granted admin flag to %s\n", *email)
	}
}
