package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// AboutInfo represents the about information from the API
type AboutInfo struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	Commit          string   `json:"commit"`
	Renderer        string   `json:"renderer"`
	OutputRetention int      `json:"outputRetention"`
	MaxUploadMB     int      `json:"maxUploadMB"`
	Operations      []string `json:"operations"`
}

// AboutPage displays information about the application
type AboutPage struct {
	app.Compo
	aboutInfo AboutInfo
	loading   bool
	error     string
}

// OnMount is called when the component is mounted
func (a *AboutPage) OnMount(ctx app.Context) {
	a.loading = true
	a.fetchAboutInfo(ctx)
}

// fetchAboutInfo fetches the about information from the API
func (a *AboutPage) fetchAboutInfo(ctx app.Context) {
	ctx.Async(func() {
		res := app.Window().Call("fetch", BuildAPIURL("/api/about"))

		res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
			if len(args) == 0 {
				return nil
			}
			response := args[0]

			response.Call("json").Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
				if len(args) == 0 {
					return nil
				}

				jsonData := args[0]
				jsonStr := app.Window().Get("JSON").Call("stringify", jsonData).String()

				ctx.Dispatch(func(ctx app.Context) {
					if err := json.Unmarshal([]byte(jsonStr), &a.aboutInfo); err != nil {
						a.error = fmt.Sprintf("Failed to parse response: %v", err)
					}
					a.loading = false
				})

				return nil
			}))

			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) any {
			ctx.Dispatch(func(ctx app.Context) {
				a.error = "Network error"
				a.loading = false
			})
			return nil
		}))
	})
}

// Render renders the about page
func (a *AboutPage) Render() app.UI {
	if a.loading {
		return app.Div().Class("about-page").Body(
			app.H2().Text("About goconvert"),
			app.Div().Class("loading").Body(app.Text("Loading...")),
		)
	}

	if a.error != "" {
		return app.Div().Class("about-page").Body(
			app.H2().Text("About goconvert"),
			app.Div().Class("error").Body(app.Text("Error: "+a.error)),
		)
	}

	return app.Div().Class("about-page").Body(
		app.H2().Text("About goconvert"),
		app.Div().Class("about-content").Body(
			app.Div().Class("about-section").Body(
				app.H3().Text("Application Information"),
				app.Div().Class("info-grid").Body(
					a.renderInfoItem("Version", a.aboutInfo.Version),
					a.renderInfoItem("Commit", a.aboutInfo.Commit),
					a.renderInfoItem("PDF Renderer", a.getRendererDisplay()),
				),
			),
			app.Div().Class("about-section").Body(
				app.H3().Text("Limits"),
				app.Div().Class("config-details").Body(
					app.P().Body(
						app.Strong().Text("Upload limit: "),
						app.Text(fmt.Sprintf("%d MB per file", a.aboutInfo.MaxUploadMB)),
					),
					app.P().Body(
						app.Strong().Text("Output retention: "),
						app.Text(fmt.Sprintf("%d hours", a.aboutInfo.OutputRetention)),
					),
				),
			),
			app.Div().Class("about-section").Body(
				app.H3().Text("Supported Operations"),
				app.Ul().Body(
					app.Range(a.aboutInfo.Operations).Slice(func(i int) app.UI {
						return app.Li().Text(a.aboutInfo.Operations[i])
					}),
				),
			),
			app.Div().Class("about-section").Body(
				app.H3().Text("About goconvert"),
				app.P().Text("goconvert is a file conversion service built with Go and WebAssembly."),
				app.P().Text("Files are converted on the server and kept available for download until their retention window expires."),
			),
		),
	)
}

// renderInfoItem creates an info item display
func (a *AboutPage) renderInfoItem(label, value string) app.UI {
	return app.Div().Class("info-item").Body(
		app.Div().Class("info-label").Body(app.Text(label)),
		app.Div().Class("info-value").Body(app.Text(value)),
	)
}

// getRendererDisplay returns a user-friendly renderer name
func (a *AboutPage) getRendererDisplay() string {
	switch a.aboutInfo.Renderer {
	case "pdfium":
		return "PDFium (WebAssembly)"
	case "fitz":
		return "MuPDF (go-fitz)"
	default:
		return a.aboutInfo.Renderer
	}
}
