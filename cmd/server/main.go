package main

import "github.com/zfrey55/shackpck-sub000/internal/cmd"

func main() {
	cmd.Execute()
}
