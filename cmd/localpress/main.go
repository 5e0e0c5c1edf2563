package main

import (
	"localpress/cmd/cmd"
	"localpress/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
