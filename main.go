package main

import (
	"log"

	"github.com/birmarket/supportd/cmd/supportd"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	supportd.Execute()
}
