package intro_test

import (
	"testing"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/internal/intro"
)

func TestScore_AllChecksPass(t *testing.T) {
	t.Parallel()

	transcript := "Hi ma'am, this is Jordan calling about your property on 123 main street."
	scores := intro.Score(transcript, "Jordan", domain.VerdictNo, domain.VerdictNo, domain.VerdictYes)

	if scores.AgentIntro.Display != domain.VerdictYes {
		t.Errorf("want AgentIntro Yes, got %+v", scores.AgentIntro)
	}
	if scores.OwnerName.Display != domain.VerdictYes {
		t.Errorf("want OwnerName Yes, got %+v", scores.OwnerName)
	}
	if scores.PropertyMentioned.Display != domain.VerdictYes {
		t.Errorf("want PropertyMentioned Yes, got %+v", scores.PropertyMentioned)
	}
	if scores.RebuttalUsed.Display != domain.VerdictYes {
		t.Errorf("want RebuttalUsed Yes, got %+v", scores.RebuttalUsed)
	}
	if scores.LateHelloAbsent.Display != domain.VerdictYes {
		t.Errorf("want LateHelloAbsent Yes, got %+v", scores.LateHelloAbsent)
	}
	if scores.ReleasingAbsent.Display != domain.VerdictYes {
		t.Errorf("want ReleasingAbsent Yes, got %+v", scores.ReleasingAbsent)
	}
	if pct := scores.Percent(); pct != 100 {
		t.Errorf("Percent() = %v, want 100", pct)
	}
}

func TestScore_AgentIntro_TypoToleratesViaLevenshtein(t *testing.T) {
	t.Parallel()

	// "Jordann" is within Levenshtein distance 1 of "Jordan".
	transcript := "hi there, this is jordann with the team."
	scores := intro.Score(transcript, "Jordan", domain.VerdictNo, domain.VerdictNo, domain.VerdictNo)
	if scores.AgentIntro.Display != domain.VerdictYes {
		t.Fatalf("want a near-match name to count as an intro, got %+v", scores.AgentIntro)
	}
}

func TestScore_AgentIntro_NoMatchIsNo(t *testing.T) {
	t.Parallel()

	transcript := "so yeah just checking on the thing"
	scores := intro.Score(transcript, "Jordan", domain.VerdictNo, domain.VerdictNo, domain.VerdictNo)
	if scores.AgentIntro.Display != domain.VerdictNo || scores.AgentIntro.Score != 0 {
		t.Fatalf("want no intro detected, got %+v", scores.AgentIntro)
	}
}

func TestScore_NoChecksPass(t *testing.T) {
	t.Parallel()

	scores := intro.Score("um yeah so anyway", "Jordan", domain.VerdictYes, domain.VerdictYes, domain.VerdictNo)
	if scores.Percent() != 0 {
		t.Fatalf("Percent() = %v, want 0 when every check fails", scores.Percent())
	}
}

func TestScore_OnlyExaminesTheIntroWindow(t *testing.T) {
	t.Parallel()

	// "property" appears only after the 450-char intro window, so it must
	// not count toward the PropertyMentioned check.
	padding := ""
	for len(padding) < 500 {
		padding += "um uh so anyway "
	}
	transcript := padding + "property on main street"
	scores := intro.Score(transcript, "", domain.VerdictNo, domain.VerdictNo, domain.VerdictNo)
	if scores.PropertyMentioned.Display != domain.VerdictNo {
		t.Fatalf("want property mention outside the intro window to be ignored, got %+v", scores.PropertyMentioned)
	}
}
