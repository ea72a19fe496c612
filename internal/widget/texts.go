package widget

// Texts holds every string the controller renders on its own.
type Texts struct {
	Thinking      string
	NoResponse    string
	LimitFallback string
	LimitNotice   string
	Failure       string
}

// DefaultTexts returns the Hungarian copy used on the Aurion Studio site.
func DefaultTexts() Texts {
	return Texts{
		Thinking:      "Gondolkodom…",
		NoResponse:    "Most nem érkezett válasz, kérlek próbáld újra.",
		LimitFallback: "Elérted az üzenetkorlátot ebben a beszélgetésben.",
		LimitNotice:   "A beszélgetés elérte a maximális üzenetszámot. Ha szeretnéd folytatni, keress minket a kapcsolati oldalon.",
		Failure:       "Hoppá, valami hiba történt. Próbáld újra később, vagy írj nekünk a kapcsolati oldalon.",
	}
}
