package schema

// CfLabels name the five loss categories driven by init-eq/restrictions.
var CfLabels = [CfCount]string{
	"Cf₁ - Потери, связанные с ростом заболеваемости населения",
	"Cf₂ - Потери сельского хозяйства от воздействия атмосферных поллютантов",
	"Cf₃ - Потери от изменения природной среды",
	"Cf₄ - Потери из-за ухудшения качества жизни населения",
	"Cf₅ - Потери предприятия, возникающие при регулировании атмосферных выбросов и оплате штрафов",
}

// FaksLabels name the fourteen disturbances.
var FaksLabels = [FaksCount]string{
	"χ₁(t) - Износ оборудования",
	"χ₂(t) - Кредитные ресурсы",
	"χ₃(t) - Иностранные инвесторы",
	"χ₄(t) - Спрос на продукцию",
	"χ₅(t) - Сложность найма",
	"χ₆(t) - Деловая репутация",
	"χ₇(C) - Уровень смога",
	"χ₈(C) - Задымленность от пожаров",
	"χ₉(C) - Летний антициклон",
	"χ₁₀(C) - Зимний антициклон",
	"χ₁₁(C) - Загруженность дорог",
	"χ₁₂(C) - Крупные предприятия",
	"χ₁₃(C) - Эпидемиологическая ситуация",
	"χ₁₄(C) - Санкции",
}

// EquationLabels name the equations by index.
var EquationLabels = map[int]string{
	1:  "f₁(Cf₃) - Влияние на заболеваемость",
	2:  "f₂(Cf₄) - Влияние на качество жизни",
	3:  "f₃(Cf₅) - Влияние потерь предприятия",
	4:  "f₄(Cf₃) - Влияние на сельское хозяйство",
	5:  "f₅(Cf₄) - Влияние качества жизни на сельское хозяйство",
	6:  "f₆(Cf₅) - Влияние предприятия на сельское хозяйство",
	7:  "f₇(Cf₅) - Влияние предприятия на природу",
	8:  "f₈(Cf₁) - Влияние заболеваемости на качество жизни",
	9:  "f₉(Cf₂) - Влияние сельского хозяйства на качество жизни",
	10: "f₁₀(Cf₃) - Влияние природы на качество жизни",
	11: "f₁₁(Cf₅) - Влияние предприятия на качество жизни",
	12: "f₁₂(Cf₁) - Влияние заболеваемости на предприятие",
}
