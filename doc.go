// Package main provides the entry point of the shop admin backend.
// It serves the json api of the administration panel with the Fiber
// framework: accounts with emailed two factor codes and Google sign in,
// site settings, dynamic pages, the outbound email account and database
// backups. Data is kept with gorm in MySQL, PostgreSQL or SQLite.
package main
