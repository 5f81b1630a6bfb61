package templates

import (
	"strconv"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"prensa/constants"
	"prensa/database"
)

func postPath(p database.Post, suffix string) string {
	return "/dashboard/post/" + strconv.Itoa(int(p.ID)) + suffix
}

// editableBody prefers the markdown source; generated posts only have
// rendered HTML.
func editableBody(p database.Post) string {
	if p.Source != "" {
		return p.Source
	}
	return p.Content
}

// DashboardStats is the overview header of the dashboard landing page.
type DashboardStats struct {
	Total     int
	Published int
	Drafts    int
	Views     int64
}

func statBox(label, value string) g.Node {
	return Div(Class("stat-box"),
		Span(Class("stat-value"), g.Text(value)),
		Span(Class("muted small"), g.Text(label)),
	)
}

// PostList is the dashboard landing page: the signed-in author's articles.
func PostList(props LayoutProps, stats DashboardStats, posts []database.Post, states map[uint]string) g.Node {
	return Layout(props,
		H1(g.Text("Mis artículos")),
		Div(Class("stats"),
			statBox("artículos", strconv.Itoa(stats.Total)),
			statBox("publicados", strconv.Itoa(stats.Published)),
			statBox("borradores", strconv.Itoa(stats.Drafts)),
			statBox("visitas", strconv.FormatInt(stats.Views, 10)),
		),
		P(
			A(Href("/dashboard/post/new"), Class("button"), g.Text("Nuevo artículo")),
			g.Text(" "),
			A(Href("/dashboard/scheduled"), g.Text("Programados")),
			g.Text(" · "),
			A(Href("/dashboard/hero"), g.Text("Hero")),
			g.Text(" · "),
			A(Href("/dashboard/autocontent"), g.Text("Automatización")),
		),
		Table(Class("post-table"),
			THead(Tr(
				Th(g.Text("Título")),
				Th(g.Text("Categoría")),
				Th(g.Text("Estado")),
				Th(g.Text("Visitas")),
				Th(g.Text("")),
			)),
			TBody(
				g.Group(g.Map(posts, func(p database.Post) g.Node {
					return Tr(
						Td(A(Href(postPath(p, "")), g.Text(p.Title))),
						Td(g.Text(p.Category)),
						Td(Span(Class("badge badge-"+states[p.ID]), g.Text(states[p.ID]))),
						Td(g.Textf("%d", p.Views)),
						Td(
							Form(Method("post"), Action(postPath(p, "/delete")), Class("inline"),
								Button(Type("submit"), Class("danger"), g.Text("Eliminar")),
							),
						),
					)
				})),
			),
		),
	)
}

// PostForm renders both the create and the edit form; post is nil when
// creating.
func PostForm(props LayoutProps, post *database.Post) g.Node {
	action := "/dashboard/post/new"
	var p database.Post
	if post != nil {
		p = *post
		action = postPath(p, "")
	}

	return Layout(props,
		g.If(post == nil, H1(g.Text("Nuevo artículo"))),
		g.If(post != nil, H1(g.Text("Editar artículo"))),
		Form(Method("post"), Action(action),
			Label(For("title"), g.Text("Título")),
			Input(Type("text"), ID("title"), Name("title"), Value(p.Title), Required()),

			Label(For("slug"), g.Text("Slug (vacío para derivarlo del título)")),
			Input(Type("text"), ID("slug"), Name("slug"), Value(p.Slug)),

			Label(For("category"), g.Text("Categoría")),
			Select(ID("category"), Name("category"),
				g.Group(g.Map(constants.Categories, func(cat string) g.Node {
					return Option(Value(cat), g.Text(cat), g.If(cat == p.Category, Selected()))
				})),
			),

			Label(For("excerpt"), g.Text("Extracto")),
			Textarea(ID("excerpt"), Name("excerpt"), Rows("2"), g.Text(p.Excerpt)),

			Label(For("body"), g.Text("Contenido (markdown)")),
			Textarea(ID("body"), Name("body"), Rows("18"), g.Text(editableBody(p))),

			Label(For("imageUrl"), g.Text("Imagen (URL)")),
			Input(Type("text"), ID("imageUrl"), Name("imageUrl"), Value(p.ImageURL)),

			Label(For("metaDescription"), g.Text("Meta descripción")),
			Input(Type("text"), ID("metaDescription"), Name("metaDescription"), Value(p.MetaDescription)),

			Label(For("tags"), g.Text("Etiquetas (separadas por comas)")),
			Input(Type("text"), ID("tags"), Name("tags")),

			Label(
				Input(Type("checkbox"), Name("published"), g.If(p.Published, Checked())),
				g.Text(" Publicado"),
			),

			Button(Type("submit"), g.Text("Guardar")),
		),
	)
}

type ScheduledItem struct {
	Post  database.Post
	State string
}

func ScheduledList(props LayoutProps, items []ScheduledItem) g.Node {
	return Layout(props,
		H1(g.Text("Artículos programados")),
		g.If(len(items) == 0,
			P(Class("muted"), g.Text("No hay artículos programados.")),
		),
		g.Group(g.Map(items, func(it ScheduledItem) g.Node {
			p := it.Post
			return Div(Class("scheduled-item"),
				H3(g.Text(p.Title)),
				P(Class("muted"),
					Span(Class("badge"), g.Text(p.Category)),
					publishedAtLabel(p, "02/01/2006 15:04"),
					g.If(it.State == "overdue", Span(Class("badge danger"), g.Text("Retrasado"))),
				),
				Div(Class("row"),
					g.If(it.State == "overdue",
						Form(Method("post"), Action(postPath(p, "/publish-now")), Class("inline"),
							Button(Type("submit"), g.Text("Publicar ahora")),
						),
					),
					Form(Method("post"), Action(postPath(p, "/schedule")), Class("inline"),
						Input(Type("datetime-local"), Name("publishAt"), Required()),
						Button(Type("submit"), g.Text("Reprogramar")),
					),
					Form(Method("post"), Action(postPath(p, "/cancel-schedule")), Class("inline"),
						Button(Type("submit"), Class("danger"), g.Text("Cancelar")),
					),
				),
			)
		})),
	)
}

func HeroManager(props LayoutProps, posts []database.Post) g.Node {
	return Layout(props,
		H1(g.Text("Gestor del hero")),
		P(Class("muted"), g.Text("Selecciona qué artículos aparecen fijos en el hero de la portada.")),
		g.Group(g.Map(posts, func(p database.Post) g.Node {
			label := "Fijar al hero"
			if p.IsHeroPinned {
				label = "Quitar del hero"
			}
			return Div(Class("hero-row"),
				H3(g.Text(p.Title)),
				g.If(p.IsHeroPinned, Span(Class("badge"), g.Text("Fijado"))),
				Form(Method("post"), Action(postPath(p, "/toggle-hero")), Class("inline"),
					Button(Type("submit"), g.Text(label)),
				),
			)
		})),
	)
}

type AutoContentData struct {
	Settings []database.AutoContentSetting
	Logs     []database.AutoArticleLog
}

func AutoContent(props LayoutProps, data AutoContentData) g.Node {
	return Layout(props,
		H1(g.Text("Automatización de contenido")),

		H2(g.Text("Nueva automatización")),
		Form(Method("post"), Action("/dashboard/autocontent/new"),
			Label(For("topic"), g.Text("Tema")),
			Input(Type("text"), ID("topic"), Name("topic"), Placeholder("ej: Inteligencia Artificial en 2024"), Required()),

			Label(For("ac-category"), g.Text("Categoría")),
			Select(ID("ac-category"), Name("category"),
				g.Group(g.Map(constants.Categories, func(cat string) g.Node {
					return Option(Value(cat), g.Text(cat))
				})),
			),

			Label(For("frequency"), g.Text("Frecuencia (horas)")),
			Input(Type("number"), ID("frequency"), Name("frequencyHours"), Min("1"), Max("168"), Value("24"), Required()),

			Label(For("promptTemplate"), g.Text("Plantilla de prompt")),
			Textarea(ID("promptTemplate"), Name("promptTemplate"), Rows("4"), Required(),
				g.Text("Escribe un artículo detallado y profesional sobre tecnología que sea informativo y atractivo para lectores interesados en innovación tecnológica."),
			),

			Button(Type("submit"), g.Text("Crear automatización")),
		),

		H2(g.Text("Automatizaciones")),
		g.If(len(data.Settings) == 0,
			P(Class("muted"), g.Text("No hay automatizaciones configuradas.")),
		),
		g.Group(g.Map(data.Settings, func(s database.AutoContentSetting) g.Node {
			base := "/dashboard/autocontent/" + strconv.Itoa(int(s.ID))
			toggleLabel := "Activar"
			if s.IsActive {
				toggleLabel = "Pausar"
			}
			return Div(Class("setting-row"),
				H3(g.Text(s.Topic)),
				P(Class("muted"),
					Span(Class("badge"), g.Text(s.Category)),
					g.Textf(" · cada %dh", s.FrequencyHours),
					g.If(!s.IsActive, Span(Class("badge"), g.Text("pausada"))),
				),
				P(Class("small"), g.Text(s.PromptTemplate)),
				Div(Class("row"),
					Form(Method("post"), Action(base+"/toggle"), Class("inline"),
						Button(Type("submit"), g.Text(toggleLabel)),
					),
					Form(Method("post"), Action(base+"/test"), Class("inline"),
						Button(Type("submit"), g.Text("Probar")),
					),
					Form(Method("post"), Action(base+"/delete"), Class("inline"),
						Button(Type("submit"), Class("danger"), g.Text("Eliminar")),
					),
				),
			)
		})),

		H2(g.Text("Historial de generaciones")),
		g.If(len(data.Logs) == 0,
			P(Class("muted"), g.Text("No hay generaciones registradas aún.")),
		),
		g.Group(g.Map(data.Logs, func(entry database.AutoArticleLog) g.Node {
			return Div(Class("log-row"),
				Span(Class("badge badge-"+entry.Status), g.Text(entry.Status)),
				g.Textf(" %s — %s", entry.Topic, entry.CreatedAt.Format("02/01/2006 15:04")),
				g.If(entry.ErrorMessage != "", P(Class("error small"), g.Text(entry.ErrorMessage))),
			)
		})),
	)
}
