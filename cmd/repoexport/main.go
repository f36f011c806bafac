package main

import (
	"fmt"

	"repoexport/internal/cli"
	"repoexport/internal/utils"
)

// main is the entry point for the repoexport command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(0)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
