package templates

import (
	"fmt"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"prensa/database"
)

type HomeData struct {
	Hero           []database.Post
	Posts          []database.Post
	ActiveCategory string
	Query          string
}

func Home(props LayoutProps, data HomeData) g.Node {
	return Layout(props,
		g.If(len(data.Hero) > 0, heroCarousel(data.Hero)),

		Form(Method("get"), Action("/"), Class("search"),
			Input(Type("search"), Name("q"), Placeholder("Buscar noticias..."), Value(data.Query)),
			g.If(data.ActiveCategory != "",
				Input(Type("hidden"), Name("category"), Value(data.ActiveCategory)),
			),
			Button(Type("submit"), g.Text("Buscar")),
		),

		g.If(data.Query != "",
			P(Class("muted"), g.Textf("Mostrando %d resultado(s) para %q", len(data.Posts), data.Query)),
		),

		g.If(len(data.Posts) == 0,
			P(Class("muted"), g.Text("No hay noticias disponibles en esta categoría.")),
		),
		Section(Class("news-grid"),
			g.Group(g.Map(data.Posts, NewsCard)),
		),
	)
}

func heroCarousel(posts []database.Post) g.Node {
	return Section(Class("hero"),
		g.Group(g.Map(posts, func(p database.Post) g.Node {
			return Div(Class("hero-item"),
				g.If(p.ImageURL != "", Img(Src(p.ImageURL), Alt(p.AltText))),
				H2(A(Href("/articulo/"+p.Slug), g.Text(p.Title))),
				P(g.Text(p.Excerpt)),
			)
		})),
	)
}

func NewsCard(p database.Post) g.Node {
	return Article(Class("news-card"),
		g.If(p.ImageURL != "", Img(Src(p.ImageURL), Alt(p.AltText))),
		Span(Class("badge"), g.Text(p.Category)),
		H3(A(Href("/articulo/"+p.Slug), g.Text(p.Title))),
		P(g.Text(p.Excerpt)),
		P(Class("muted small"),
			g.Text(readingTimeLabel(p.ReadingTime)),
			publishedAtLabel(p, "02/01/2006"),
		),
	)
}

// publishedAtLabel returns nil (renders nothing) for posts without a
// publish time; g.If evaluates its node eagerly so the nil check has to
// happen out here.
func publishedAtLabel(p database.Post, layout string) g.Node {
	if p.PublishedAt == nil {
		return nil
	}
	return g.Textf(" · %s", p.PublishedAt.Format(layout))
}

func ArticlePage(props LayoutProps, p database.Post) g.Node {
	return Layout(props,
		Article(Class("article"),
			Span(Class("badge"), g.Text(p.Category)),
			H1(g.Text(p.Title)),
			P(Class("muted"),
				g.Text(readingTimeLabel(p.ReadingTime)),
				g.Textf(" · %d visitas", p.Views),
				publishedAtLabel(p, "02/01/2006"),
			),
			g.If(p.ImageURL != "", Img(Src(p.ImageURL), Alt(p.AltText))),
			// stored content is sanitized before it reaches the database
			Div(Class("article-body"), g.Raw(p.Content)),
		),
	)
}

func readingTimeLabel(minutes int) string {
	return fmt.Sprintf("%d min de lectura", minutes)
}
