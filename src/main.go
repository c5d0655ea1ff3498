package main

import (
	_ "github.com/chanwatch/chanwatch/src/admintools"
	_ "github.com/chanwatch/chanwatch/src/migration"
	"github.com/chanwatch/chanwatch/src/watcher"
)

func main() {
	watcher.WatcherCommand.Execute()
}
