package menu

import (
	"errors"
	"strings"
	"testing"
)

// calendarPage mimics the institutional month page: one tbody whose cells
// start with a day number, then separator markup, then the menu lines.
const calendarPage = `<!DOCTYPE html>
<html><head><title>식단</title></head><body>
<div id="chrome"><table><tr><td>navigation, no tbody content of interest</td></tr></table></div>
<table class="tbType01"><tbody>
<tr>
<td><div>1<hr>현미밥<br>미역국<br>제육볶음</div></td>
<td><div>2<hr></div></td>
<td><div>&nbsp;</div></td>
<td><div>3<hr>잡곡밥<br><strong>갈비탕</strong><br>김치</div></td>
</tr>
</tbody></table>
</body></html>`

func TestParse_ExtractsDayCells(t *testing.T) {
	got, err := Parse(strings.NewReader(calendarPage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 day cells, got %d: %+v", len(got), got)
	}

	if got[0].Day != 1 || got[0].Text != "현미밥\n미역국\n제육볶음" {
		t.Fatalf("day 1 parsed wrong: %+v", got[0])
	}
	// A day listed without a menu keeps an empty text.
	if got[1].Day != 2 || got[1].Text != "" {
		t.Fatalf("day 2 parsed wrong: %+v", got[1])
	}
	// Nested markup is flattened to its text content.
	if got[2].Day != 3 || got[2].Text != "잡곡밥\n갈비탕\n김치" {
		t.Fatalf("day 3 parsed wrong: %+v", got[2])
	}
}

func TestParse_SkipsNonNumericCells(t *testing.T) {
	page := `<html><body><table><tbody>
<tr><td><div>요일<hr>헤더</div></td><td><div>5<hr>급식</div></td></tr>
</tbody></table></body></html>`

	got, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || got[0].Day != 5 || got[0].Text != "급식" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParse_CellWithoutWrapperElement(t *testing.T) {
	// Some pages put the text straight into the td.
	page := `<html><body><table><tbody>
<tr><td>7<hr>비빔밥<br>된장국</td></tr>
</tbody></table></body></html>`

	got, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || got[0].Day != 7 || got[0].Text != "비빔밥\n된장국" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParse_NoCalendar(t *testing.T) {
	_, err := Parse(strings.NewReader(`<html><body><p>점검중</p></body></html>`))
	if !errors.Is(err, ErrNoCalendar) {
		t.Fatalf("expected ErrNoCalendar, got %v", err)
	}
}
