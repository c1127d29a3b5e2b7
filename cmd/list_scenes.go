package cmd

import (
	"bytes"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListScenes prints the builtin demo scenes.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Description"})
	for _, name := range builtinSceneNames() {
		table.Append([]string{name, builtinScenes[name].description})
	}
	table.Render()
	logger.Noticef("available scenes:\n%s", buf.String())
	return nil
}
