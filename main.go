package main

import "github.com/Alijeyrad/salon_storefront/cmd"

func main() {
	cmd.Execute()
}
