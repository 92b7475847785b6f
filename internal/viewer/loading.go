package viewer

// fadeSeconds is how long the loading screen takes to fade out once ready.
const fadeSeconds = 1

// LoadingScreen tracks the opacity of the loading indicator. It stays fully
// opaque until Dismiss, then fades to nothing.
type LoadingScreen struct {
	dismissed bool
	alpha     float32
}

func NewLoadingScreen() *LoadingScreen {
	return &LoadingScreen{alpha: 1}
}

// Dismiss starts the fade. Later calls do nothing.
func (l *LoadingScreen) Dismiss() {
	l.dismissed = true
}

// Update advances the fade by dt seconds.
func (l *LoadingScreen) Update(dt float32) {
	if !l.dismissed || dt <= 0 {
		return
	}
	l.alpha -= dt / fadeSeconds
	if l.alpha < 0 {
		l.alpha = 0
	}
}

func (l *LoadingScreen) Alpha() float32 { return l.alpha }

// Visible reports whether the indicator still needs drawing.
func (l *LoadingScreen) Visible() bool { return l.alpha > 0 }
