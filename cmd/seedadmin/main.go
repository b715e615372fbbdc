// Command seedadmin creates an admin user so the API can be logged into
// after a fresh deployment.
//
// Usage: seedadmin -email admin@example.com -password secret -name "Admin"
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/precifica/precifica_api/internal/config"
	"github.com/precifica/precifica_api/internal/database"
	"github.com/precifica/precifica_api/internal/repository"
	"github.com/precifica/precifica_api/internal/service"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "Admin", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seedadmin -email <email> -password <password> [-name <name>]")
		os.Exit(2)
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	authSvc := service.NewAuthService(repository.NewAdminUserRepository(db))
	if err := authSvc.CreateAdmin(*email, *password, *name); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin %s created\n", *email)
}
