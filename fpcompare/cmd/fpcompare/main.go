package main

import (
	"github.com/jgbaldwinbrown/dmf/fpcompare/pkg"
)

func main() {
	fpcompare.FullCompare()
}
