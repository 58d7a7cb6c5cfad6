package mood

import (
	"errors"
	"fmt"
	"strings"
)

// Main 表示一级情绪分类。
type Main string

// Sub 表示二级情绪标签，只在所属的 Main 下有效。
type Sub string

const (
	Best    Main = "best"
	Good    Main = "good"
	Neutral Main = "neutral"
	Poor    Main = "poor"
	Bad     Main = "bad"
)

const (
	Proud     Sub = "proud"
	Grateful  Sub = "grateful"
	Energetic Sub = "energetic"
	Excited   Sub = "excited"
	Fulfilled Sub = "fulfilled"

	Calm       Sub = "calm"
	Productive Sub = "productive"
	Hopeful    Sub = "hopeful"
	Motivated  Sub = "motivated"
	Friendly   Sub = "friendly"

	Indifferent Sub = "indifferent"
	Blank       Sub = "blank"
	Tired       Sub = "tired"
	Bored       Sub = "bored"
	Quiet       Sub = "quiet"

	Frustrated  Sub = "frustrated"
	Overwhelmed Sub = "overwhelmed"
	Nervous     Sub = "nervous"
	Insecure    Sub = "insecure"
	Confused    Sub = "confused"

	Angry    Sub = "angry"
	Sad      Sub = "sad"
	Lonely   Sub = "lonely"
	Anxious  Sub = "anxious"
	Hopeless Sub = "hopeless"
)

// SubsPerMain 是每个一级情绪下的二级标签数量。
const SubsPerMain = 5

var ErrInvalidPair = errors.New("invalid mood combination")

var mainOrder = [...]Main{Best, Good, Neutral, Poor, Bad}

var taxonomy = map[Main][SubsPerMain]Sub{
	Best:    {Proud, Grateful, Energetic, Excited, Fulfilled},
	Good:    {Calm, Productive, Hopeful, Motivated, Friendly},
	Neutral: {Indifferent, Blank, Tired, Bored, Quiet},
	Poor:    {Frustrated, Overwhelmed, Nervous, Insecure, Confused},
	Bad:     {Angry, Sad, Lonely, Anxious, Hopeless},
}

// Pair 是一组经过校验的 (main, sub) 情绪。
type Pair struct {
	Main Main `json:"main"`
	Sub  Sub  `json:"sub"`
}

// Key 返回统计时使用的 "main:sub" 键。
func (p Pair) Key() string {
	return string(p.Main) + ":" + string(p.Sub)
}

// Mains 按固定顺序返回全部一级情绪。
func Mains() []Main {
	out := make([]Main, len(mainOrder))
	copy(out, mainOrder[:])
	return out
}

// Subs 返回某个一级情绪下的二级标签，未知的 main 返回 nil。
func Subs(main Main) []Sub {
	subs, ok := taxonomy[main]
	if !ok {
		return nil
	}
	out := make([]Sub, SubsPerMain)
	copy(out, subs[:])
	return out
}

// Pairs 返回全部 25 个合法组合。
func Pairs() []Pair {
	out := make([]Pair, 0, len(mainOrder)*SubsPerMain)
	for _, main := range mainOrder {
		for _, sub := range taxonomy[main] {
			out = append(out, Pair{Main: main, Sub: sub})
		}
	}
	return out
}

// IsMain reports whether raw names a main mood.
func IsMain(raw string) bool {
	_, ok := taxonomy[Main(raw)]
	return ok
}

// Contains reports whether (main, sub) is a pair of the taxonomy.
func Contains(main Main, sub Sub) bool {
	subs, ok := taxonomy[main]
	if !ok {
		return false
	}
	for _, s := range subs {
		if s == sub {
			return true
		}
	}
	return false
}

// Validate 校验外部输入（API 载荷、模型输出）中的情绪组合。
// 输入区分大小写，调用方负责在需要时先做规范化。
func Validate(main, sub string) (Pair, error) {
	if !Contains(Main(main), Sub(sub)) {
		return Pair{}, fmt.Errorf("%w: main=%q sub=%q", ErrInvalidPair, main, sub)
	}
	return Pair{Main: Main(main), Sub: Sub(sub)}, nil
}

// Normalize lowercases and trims raw labels before validation.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
