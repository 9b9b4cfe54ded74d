/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Seann-Moser/cobot/cmd"

func main() {
	cmd.Execute()
}
