package main

import (
	"github.com/medaverse/meda-api/server"
)

func main() {
	server.Init()
}
