package templates

import (
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

func SignIn(props LayoutProps) g.Node {
	return Layout(props,
		H1(g.Text("Acceder")),
		authForm("/signin", "Acceder"),
		P(A(Href("/signup"), g.Text("¿No tienes cuenta? Regístrate"))),
	)
}

func SignUp(props LayoutProps) g.Node {
	return Layout(props,
		H1(g.Text("Crear cuenta")),
		authForm("/signup", "Registrarse"),
		P(A(Href("/signin"), g.Text("¿Ya tienes cuenta? Accede"))),
	)
}

func authForm(action, label string) g.Node {
	return Form(Method("post"), Action(action),
		Label(For("username"), g.Text("Usuario")),
		Input(Type("text"), ID("username"), Name("username"), Required()),
		Label(For("password"), g.Text("Contraseña")),
		Input(Type("password"), ID("password"), Name("password"), Required()),
		Button(Type("submit"), g.Text(label)),
	)
}
