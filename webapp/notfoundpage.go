package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// NotFoundPage is shown for any route the app does not know about
type NotFoundPage struct {
	app.Compo
}

// Render renders the 404 page
func (p *NotFoundPage) Render() app.UI {
	return app.Div().
		Class("not-found-page").
		Body(
			app.Div().
				Class("not-found-container").
				Body(
					app.H1().
						Class("not-found-title").
						Text("404"),
					app.H2().
						Class("not-found-subtitle").
						Text("Nothing to convert here"),
					app.P().
						Class("not-found-message").
						Text("This address does not match any page. Your file queue and converted files are untouched."),
					app.Div().
						Class("not-found-actions").
						Body(
							app.A().
								Href("/").
								Class("not-found-home-link").
								Text("Back to the converter"),
							app.A().
								Href("/jobs").
								Class("not-found-home-link").
								Text("View jobs"),
						),
				),
		)
}
