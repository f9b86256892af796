package runtime

import "github.com/aretw0/intake/pkg/domain"

// home clears the session and shows the main menu.
func (e *Engine) home(s step) Outcome {
	if s.session.IsIdle() && s.cmd == CmdBack {
		e.logger.Debug("back requested while idle, clamped to menu", "session_key", s.session.Key)
	}
	return Outcome{Session: e.idle(s), Reply: e.menu(e.texts.Home)}
}

// back moves to the preceding collecting step without discarding answers.
// From the first step it behaves like home.
func (e *Engine) back(s step) Outcome {
	next := s.session

	switch next.Phase {
	case domain.PhaseConfirming:
		next.Phase = domain.PhaseCollecting
		next.Step = e.form.Len() - 1
	case domain.PhaseCollecting:
		if next.Step == 0 {
			e.logger.Debug("back from first question, clamped to menu", "session_key", next.Key)
			return e.home(s)
		}
		next.Step--
	}

	return Outcome{Session: next, Reply: e.renderPrompt(next, next.Step, "")}
}

// edit restarts collection from the first field, keeping every answer so the
// user only needs to change what is wrong.
func (e *Engine) edit(s step) Outcome {
	next := s.session
	next.Phase = domain.PhaseCollecting
	next.Step = 0
	return Outcome{Session: next, Reply: e.renderPrompt(next, 0, "")}
}

// keep moves past the current field leaving its answer unchanged. Without an
// answer on file the input is validated as an ordinary answer.
func (e *Engine) keep(s step) Outcome {
	field, _ := e.form.At(s.session.Step)
	if _, ok := s.session.Answers[field.Name]; !ok {
		return e.answer(s)
	}
	return e.advance(s.session)
}
