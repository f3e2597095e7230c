package reading

import (
	"fmt"
	"math/rand"
)

// TarotSeedRange bounds the random seed embedded in every tarot prompt.
const TarotSeedRange = 1_000_000

const fortunePromptTemplate = `
Bạn là một chuyên gia chiêm tinh và người xem bói thân thiện.
Phân tích ngày sinh của người dùng (%s) và chủ đề họ quan tâm (%s - %s).

Hãy cung cấp kết quả bao gồm:
1. Đặc điểm tính cách dựa trên ngày sinh (Cung hoàng đạo, thần số học).
2. Dự đoán xu hướng tương lai liên quan đến chủ đề đã chọn.
3. Lời khuyên thực tế, tích cực và dễ áp dụng.

Yêu cầu bắt buộc:
- Ngôn ngữ: Tiếng Việt.
- Không hù dọa, không tiêu cực.
- Giọng điệu thân thiện, nhẹ nhàng, dễ hiểu.
- Tích cực và mang tính động viên.
- Ngắn gọn nhưng ý nghĩa (khoảng 3-4 câu cho mỗi phần).
`

const tarotPromptTemplate = `
Bạn là một chuyên gia Tarot thân thiện.
Hãy rút ngẫu nhiên một lá bài Tarot cho ngày hôm nay (Random seed: %d).

Cung cấp kết quả phân tích dưới dạng JSON bao gồm:
1. Tên lá bài và chiều (Xuôi hoặc Ngược).
2. Mã định danh lá bài (cardId) theo chuẩn PKT để hiển thị hình ảnh.
3. Ý nghĩa cốt lõi.
4. Ý nghĩa cho ngày hôm nay.
5. Lời khuyên.

QUY TẮC cardId (Bắt buộc phải đúng định dạng):
- Major Arcana: ar00 (Fool) đến ar21 (World).
- Wands (Gậy): wa01 (Ace) đến wa14 (King).
- Cups (Cốc): cu01 (Ace) đến cu14 (King).
- Swords (Kiếm): sw01 (Ace) đến sw14 (King).
- Pentacles (Tiền): pe01 (Ace) đến pe14 (King).
- Ví dụ: The Fool -> ar00, Ace of Cups -> cu01, Queen of Swords -> sw13.

Yêu cầu nội dung:
- Ngôn ngữ: Tiếng Việt.
- Giọng điệu: Tích cực, chữa lành.
- Orientation: Trả về "Xuôi" hoặc "Ngược".
`

// BuildFortunePrompt is deterministic: equal requests give equal prompts.
func BuildFortunePrompt(req FortuneRequest) string {
	return fmt.Sprintf(fortunePromptTemplate, req.Birthdate, req.Topic, req.Topic.Label())
}

// SeedFunc returns a seed in [0, TarotSeedRange).
type SeedFunc func() int

// PromptBuilder builds tarot prompts; the seed source is replaceable in tests.
type PromptBuilder struct {
	seed SeedFunc
}

func NewPromptBuilder(seed SeedFunc) *PromptBuilder {
	if seed == nil {
		seed = func() int { return rand.Intn(TarotSeedRange) }
	}
	return &PromptBuilder{seed: seed}
}

func (b *PromptBuilder) BuildFortunePrompt(req FortuneRequest) string {
	return BuildFortunePrompt(req)
}

// BuildTarotPrompt embeds a fresh seed on every call.
func (b *PromptBuilder) BuildTarotPrompt() string {
	seed := b.seed()
	if seed < 0 || seed >= TarotSeedRange {
		seed = ((seed % TarotSeedRange) + TarotSeedRange) % TarotSeedRange
	}
	return fmt.Sprintf(tarotPromptTemplate, seed)
}
