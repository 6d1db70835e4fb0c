package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// ConvertPage is the main page: upload files, pick a selection and run one
// of the conversion operations against it
type ConvertPage struct {
	app.Compo
	queue        QueueState
	outputs      []Output
	targetFormat string
	excludeSpec  string
	converting   bool
	loading      bool
	error        string
	notice       string
}

// OnMount is called when the component is mounted
func (p *ConvertPage) OnMount(ctx app.Context) {
	p.targetFormat = "png"
	p.loading = true
	p.loadQueue(ctx)
	p.loadOutputs(ctx)
}

// Render renders the convert page
func (p *ConvertPage) Render() app.UI {
	return app.Div().
		Class("convert-page").
		Body(
			app.H2().Text("File Conversion"),
			app.P().Text("Upload images and PDFs, tick the files to work on and pick an operation."),

			p.renderUpload(),
			p.renderStatus(),
			p.renderQueue(),
			p.renderOperations(),
			p.renderOutputs(),
		)
}

// renderUpload renders the file picker and upload button
func (p *ConvertPage) renderUpload() app.UI {
	return app.Div().Class("upload-controls").Body(
		app.Input().
			ID("file-input").
			Type("file").
			Multiple(true).
			Accept("image/*,application/pdf"),
		app.Button().
			Class("btn-primary").
			Disabled(p.converting).
			OnClick(p.onUploadClick).
			Body(app.Text("Add to Queue")),
	)
}

// renderStatus renders the error or notice banner
func (p *ConvertPage) renderStatus() app.UI {
	if p.error != "" {
		return app.Div().Class("error").Body(app.Text("Error: " + p.error))
	}
	if p.notice != "" {
		return app.Div().Class("success").Body(app.Text(p.notice))
	}
	return app.Div()
}

// renderQueue renders the queue table with selection checkboxes
func (p *ConvertPage) renderQueue() app.UI {
	if p.loading {
		return app.Div().Class("loading").Body(app.Text("Loading..."))
	}
	if len(p.queue.Files) == 0 {
		return app.Div().Class("no-results").Body(app.Text("The queue is empty."))
	}

	return app.Div().Class("queue").Body(
		app.H3().Text(fmt.Sprintf("Queue (%d files, %d selected)", len(p.queue.Files), len(p.queue.Selected))),
		app.Table().Class("queue-table").Body(
			app.THead().Body(
				app.Tr().Body(
					app.Th().Text(""),
					app.Th().Text("Name"),
					app.Th().Text("Type"),
					app.Th().Text("Size"),
					app.Th().Text(""),
				),
			),
			app.TBody().Body(
				app.Range(p.queue.Files).Slice(func(i int) app.UI {
					file := p.queue.Files[i]
					return app.Tr().Body(
						app.Td().Body(
							app.Input().
								Type("checkbox").
								Checked(file.Selected).
								OnChange(p.onToggleSelect(file.Index, file.Selected)),
						),
						app.Td().Text(file.Name),
						app.Td().Text(file.Class),
						app.Td().Text(formatSize(file.SizeBytes)),
						app.Td().Body(
							app.Button().
								Class("btn-small").
								Disabled(p.converting).
								OnClick(p.onRemoveClick(file.Index)).
								Body(app.Text("Remove")),
						),
					)
				}),
			),
		),
		app.Button().
			Class("btn-small").
			Disabled(p.converting).
			OnClick(p.onClearClick).
			Body(app.Text("Clear Queue")),
	)
}

// renderOperations renders the operation buttons and their parameters
func (p *ConvertPage) renderOperations() app.UI {
	return app.Div().Class("operations").Body(
		app.H3().Text("Operations"),
		app.Div().Class("operation-row").Body(
			app.Select().
				ID("target-format").
				OnChange(p.onFormatChange).
				Body(
					app.Option().Value("png").Text("PNG").Selected(p.targetFormat == "png"),
					app.Option().Value("jpg").Text("JPEG").Selected(p.targetFormat == "jpg"),
				),
			app.Button().
				Class("btn-primary").
				Disabled(p.converting).
				OnClick(p.onConvertClick("convertImageFormat")).
				Body(app.Text("Convert Image Format")),
		),
		app.Div().Class("operation-row").Body(
			app.Button().
				Class("btn-primary").
				Disabled(p.converting).
				OnClick(p.onConvertClick("imagesToPdf")).
				Body(app.Text("Images to PDF")),
			app.Button().
				Class("btn-primary").
				Disabled(p.converting).
				OnClick(p.onConvertClick("pdfToImages")).
				Body(app.Text("PDF to Images")),
			app.Button().
				Class("btn-primary").
				Disabled(p.converting).
				OnClick(p.onConvertClick("mergePdfs")).
				Body(app.Text("Merge PDFs")),
		),
		app.Div().Class("operation-row").Body(
			app.Input().
				ID("exclude-spec").
				Type("text").
				Placeholder("Pages to remove, e.g. 1,3-5").
				Value(p.excludeSpec).
				OnChange(p.onExcludeChange),
			app.Button().
				Class("btn-primary").
				Disabled(p.converting).
				OnClick(p.onConvertClick("excludePages")).
				Body(app.Text("Remove Pages")),
		),
	)
}

// renderOutputs renders the download links for finished conversions
func (p *ConvertPage) renderOutputs() app.UI {
	if len(p.outputs) == 0 {
		return app.Div()
	}

	return app.Div().Class("outputs").Body(
		app.H3().Text("Converted Files"),
		app.Ul().Body(
			app.Range(p.outputs).Slice(func(i int) app.UI {
				output := p.outputs[i]
				return app.Li().Body(
					app.A().
						Href(BuildAPIURL("/api/outputs/"+output.ID+"/download")).
						Class("download-link").
						Body(app.Text(output.Name)),
					app.Span().Class("output-size").Text(" (" + formatSize(output.SizeBytes) + ")"),
				)
			}),
		),
	)
}

// formatSize renders a byte count for humans
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// onFormatChange stores the image target format choice
func (p *ConvertPage) onFormatChange(ctx app.Context, e app.Event) {
	p.targetFormat = ctx.JSSrc().Get("value").String()
}

// onExcludeChange stores the page exclusion spec
func (p *ConvertPage) onExcludeChange(ctx app.Context, e app.Event) {
	p.excludeSpec = ctx.JSSrc().Get("value").String()
}

// onUploadClick posts the chosen files as one multipart request
func (p *ConvertPage) onUploadClick(ctx app.Context, e app.Event) {
	input := app.Window().GetElementByID("file-input")
	files := input.Get("files")
	if !files.Truthy() || files.Get("length").Int() == 0 {
		p.error = "Choose one or more files first"
		return
	}

	formData := app.Window().Get("FormData").New()
	for i := 0; i < files.Get("length").Int(); i++ {
		formData.Call("append", "file", files.Index(i))
	}

	p.error = ""
	p.notice = ""
	p.fetchQueueUpdate(ctx, BuildAPIURL("/api/files"), map[string]interface{}{
		"method": "POST",
		"body":   formData,
	})
}

// onToggleSelect flips one file's selection state
func (p *ConvertPage) onToggleSelect(index int, selected bool) func(ctx app.Context, e app.Event) {
	return func(ctx app.Context, e app.Event) {
		action := "select"
		if selected {
			action = "deselect"
		}
		p.fetchQueueUpdate(ctx, BuildAPIURL(fmt.Sprintf("/api/files/%d/%s", index, action)), map[string]interface{}{
			"method": "POST",
		})
	}
}

// onRemoveClick removes one file from the queue
func (p *ConvertPage) onRemoveClick(index int) func(ctx app.Context, e app.Event) {
	return func(ctx app.Context, e app.Event) {
		p.fetchQueueUpdate(ctx, BuildAPIURL(fmt.Sprintf("/api/files/%d", index)), map[string]interface{}{
			"method": "DELETE",
		})
	}
}

// onClearClick empties the queue
func (p *ConvertPage) onClearClick(ctx app.Context, e app.Event) {
	p.fetchQueueUpdate(ctx, BuildAPIURL("/api/files"), map[string]interface{}{
		"method": "DELETE",
	})
}

// onConvertClick runs one of the conversion operations
func (p *ConvertPage) onConvertClick(operation string) func(ctx app.Context, e app.Event) {
	return func(ctx app.Context, e app.Event) {
		p.converting = true
		p.error = ""
		p.notice = ""

		payload, _ := json.Marshal(map[string]string{
			"operation":    operation,
			"targetFormat": p.targetFormat,
			"exclude":      p.excludeSpec,
		})

		ctx.Async(func() {
			res := app.Window().Call("fetch", BuildAPIURL("/api/convert"), map[string]interface{}{
				"method": "POST",
				"headers": map[string]interface{}{
					"Content-Type": "application/json",
				},
				"body": string(payload),
			})

			res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
				if len(args) == 0 {
					return nil
				}
				response := args[0]
				status := response.Get("status").Int()

				response.Call("json").Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
					if len(args) == 0 {
						return nil
					}
					jsonStr := app.Window().Get("JSON").Call("stringify", args[0]).String()

					ctx.Dispatch(func(ctx app.Context) {
						p.converting = false
						if status >= 200 && status < 300 {
							var result struct {
								Outputs []Output `json:"outputs"`
							}
							if err := json.Unmarshal([]byte(jsonStr), &result); err == nil {
								p.notice = fmt.Sprintf("Conversion finished, %d file(s) ready below", len(result.Outputs))
							} else {
								p.notice = "Conversion finished"
							}
							p.loadOutputs(ctx)
						} else {
							var apiErr struct {
								Error string `json:"error"`
							}
							if err := json.Unmarshal([]byte(jsonStr), &apiErr); err == nil && apiErr.Error != "" {
								p.error = apiErr.Error
							} else {
								p.error = fmt.Sprintf("Conversion failed (HTTP %d)", status)
							}
						}
					})
					return nil
				}))
				return nil
			})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
				ctx.Dispatch(func(ctx app.Context) {
					p.converting = false
					p.error = "Network error: Could not connect to server"
				})
				return nil
			}))
		})
	}
}

// fetchQueueUpdate sends a queue-changing request and applies the queue
// snapshot the server responds with
func (p *ConvertPage) fetchQueueUpdate(ctx app.Context, url string, opts map[string]interface{}) {
	ctx.Async(func() {
		res := app.Window().Call("fetch", url, opts)

		res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			if len(args) == 0 {
				return nil
			}
			response := args[0]
			status := response.Get("status").Int()

			response.Call("json").Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
				if len(args) == 0 {
					return nil
				}
				jsonStr := app.Window().Get("JSON").Call("stringify", args[0]).String()

				ctx.Dispatch(func(ctx app.Context) {
					p.loading = false
					if status >= 200 && status < 300 {
						var state QueueState
						if err := json.Unmarshal([]byte(jsonStr), &state); err != nil {
							p.error = fmt.Sprintf("Failed to parse response: %v", err)
						} else {
							p.queue = state
							p.error = ""
						}
					} else {
						var apiErr struct {
							Error string `json:"error"`
						}
						if err := json.Unmarshal([]byte(jsonStr), &apiErr); err == nil && apiErr.Error != "" {
							p.error = apiErr.Error
						} else {
							p.error = fmt.Sprintf("Request failed (HTTP %d)", status)
						}
					}
				})
				return nil
			}))
			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			ctx.Dispatch(func(ctx app.Context) {
				p.loading = false
				p.error = "Network error: Could not connect to server"
			})
			return nil
		}))
	})
}

// loadQueue fetches the current queue snapshot
func (p *ConvertPage) loadQueue(ctx app.Context) {
	p.fetchQueueUpdate(ctx, BuildAPIURL("/api/files"), map[string]interface{}{
		"method": "GET",
	})
}

// loadOutputs fetches the recent conversion outputs
func (p *ConvertPage) loadOutputs(ctx app.Context) {
	ctx.Async(func() {
		res := app.Window().Call("fetch", BuildAPIURL("/api/outputs"))

		res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			if len(args) == 0 {
				return nil
			}
			response := args[0]
			status := response.Get("status").Int()

			response.Call("json").Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
				if len(args) == 0 {
					return nil
				}
				jsonStr := app.Window().Get("JSON").Call("stringify", args[0]).String()

				ctx.Dispatch(func(ctx app.Context) {
					if status >= 200 && status < 300 {
						var result struct {
							Outputs []Output `json:"outputs"`
						}
						if err := json.Unmarshal([]byte(jsonStr), &result); err == nil {
							p.outputs = result.Outputs
						}
					}
				})
				return nil
			}))
			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			// Leave the outputs list as is on network error
			return nil
		}))
	})
}
