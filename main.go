package main

import (
	"os"

	"github.com/shopadmin/shop-admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
