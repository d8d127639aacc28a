package main

import (
	"log"
)

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func run() error {
	g := &Program{}
	if err := g.Init(); nil != err {
		return err
	}
	defer g.Deinit()
	return g.Run()
}
