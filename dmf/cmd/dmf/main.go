package main

import (
	"github.com/jgbaldwinbrown/dmf/dmf/pkg"
)

func main() {
	dmf.FullDmf()
}
