package main

import "github.com/frahmantamala/pass-management/cmd"

func main() {
	cmd.Execute()
}
