// Package templates holds the gomponents views for the public site and
// the dashboard.
package templates

import (
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"prensa/constants"
)

type LayoutProps struct {
	Title       string
	CurrentUser string
}

func NavbarComponent(props LayoutProps) g.Node {
	return Nav(Class("nav"),
		Div(Class("nav-left"),
			Div(Class("brand"), A(Href("/"), g.Text(constants.APP_NAME))),
		),
		Div(Class("nav-links nav-right"),
			g.Group(g.Map(constants.Categories, func(cat string) g.Node {
				return A(Href("/?category="+cat), g.Text(cat))
			})),
			g.If(props.CurrentUser == "",
				A(Href("/signin"), g.Text("Acceder")),
			),
			g.If(props.CurrentUser != "",
				Div(Class("row"),
					A(Href("/dashboard"), g.Textf("Panel (%s)", props.CurrentUser)),
					Form(Method("post"), Action("/logout"), Class("inline"),
						Button(Type("submit"), Class("link"), g.Text("Salir")),
					),
				),
			),
		),
	)
}

func FooterComponent() g.Node {
	return Footer(Class("footer"),
		P(Class("small"),
			g.Textf("%s — noticias de tecnología", constants.APP_NAME),
		),
	)
}

func Layout(props LayoutProps, children ...g.Node) g.Node {
	return Doctype(
		HTML(
			Lang("es"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				Link(Rel("stylesheet"), Href("/assets/css/main.css")),
				TitleEl(g.Text(props.Title)),
			),
			Body(
				Div(Class("container"),
					NavbarComponent(props),
					Main(
						g.Group(children),
					),
				),
				FooterComponent(),
			),
		),
	)
}
