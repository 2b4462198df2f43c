package main

import (
	"os"

	"github.com/mensylisir/kubeboot/cmd/kubeboot/cmd"
	"github.com/mensylisir/kubeboot/pkg/logger"
	"github.com/mensylisir/kubeboot/pkg/pipeline"
)

func main() {
	err := cmd.Execute()
	logger.SyncGlobal()
	os.Exit(pipeline.ExitCode(err))
}
