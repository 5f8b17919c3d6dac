package main

import "github.com/neurondownloader/neuron-setup/cmd/neuron-setup/cmd"

func main() {
	cmd.Execute()
}
