package bot

// Agent binds a brain to the identity it plays under.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}
