package prompt

// templates holds the fixed instruction text for one language.
// Placeholders are filled with fmt verbs in the order documented per field.
type templates struct {
	// quizHeader: subject, count.
	quizHeader string
	quizRules  []string
	// quizFormat introduces the delimited example block.
	quizFormat string
	quizExtra  string

	chatHeader string
	chatRules  []string
	chatAsk    string
	chatAnswer string

	contextLabel string
	historyLabel string

	// refusalRule: refusal pattern, example.
	refusalRule string

	// explanation: subject. Followed by the item.
	explanation   string
	questionLabel string
	optionsLabel  string
	correctLabel  string
}

var romanian = templates{
	quizHeader: "Ești un generator de întrebări de tip grilă pentru %s, nivel liceu.\n\n" +
		"GENEREAZĂ EXACT %d întrebări bazate STRICT pe CONTEXTUL de mai jos.",
	quizRules: []string{
		"Fiecare întrebare are EXACT 3 variante de răspuns, dintre care EXACT una este corectă.",
		"\"correct_index\" este poziția variantei corecte, numerotată de la 0 (0, 1 sau 2).",
		"\"explanation\" spune pe scurt de ce varianta corectă este corectă.",
		"\"source_sentence\" este numărul propoziției din context pe care se bazează întrebarea.",
		"Folosește DOAR informațiile din context. NU folosi cunoștințe externe.",
	},
	quizFormat: "FORMAT OBLIGATORIU:\nÎntoarce DOAR acest bloc, fără niciun text înainte sau după el:",
	quizExtra:  "CERINȚĂ SUPLIMENTARĂ:",

	chatHeader: "Ești un asistent virtual specializat în %s pentru liceu.",
	chatRules: []string{
		"Răspunde concis și în limba română.",
		"Folosește DOAR informațiile din contextul furnizat (modulele utilizatorului).",
		"NU folosi cunoștințe externe sau generale.",
		"Furnizează răspunsuri clare, structurate și bazate strict pe conținutul modulelor disponibile.",
	},
	chatAsk:    "ÎNTREBAREA UTILIZATORULUI:",
	chatAnswer: "RĂSPUNDE ÎN LIMBA ROMÂNĂ, RĂSPUNS CONCIS:",

	contextLabel: "CONTEXT LECȚIE:",
	historyLabel: "Istoric conversație:",

	refusalRule: "Dacă informația nu se găsește în context, răspunde EXACT cu o singură propoziție de forma: '%s', " +
		"unde [Subiect] este subiectul întrebării. De exemplu: '%s' NU răspunde niciodată doar „nu știu”.",

	explanation: "Explică pe scurt, în 1-2 propoziții (maximum 35 de cuvinte), de ce răspunsul corect la întrebarea de %s de mai jos este corect. " +
		"Nu menționa textul, lecția sau sursa. Răspunde DOAR cu explicația, în limba română.",
	questionLabel: "Întrebare:",
	optionsLabel:  "Variante:",
	correctLabel:  "Răspuns corect:",
}

var english = templates{
	quizHeader: "You generate multiple-choice questions for high school %s.\n\n" +
		"GENERATE EXACTLY %d questions based STRICTLY on the CONTEXT below.",
	quizRules: []string{
		"Each question has EXACTLY 3 answer options and EXACTLY one of them is correct.",
		"\"correct_index\" is the position of the correct option, counted from 0 (0, 1 or 2).",
		"\"explanation\" briefly says why the correct option is correct.",
		"\"source_sentence\" is the number of the context sentence the question is based on.",
		"Use ONLY the information in the context. Do NOT use outside knowledge.",
	},
	quizFormat: "REQUIRED FORMAT:\nReturn ONLY this block, with no text before or after it:",
	quizExtra:  "ADDITIONAL REQUIREMENT:",

	chatHeader: "You are a virtual assistant specialised in high school %s.",
	chatRules: []string{
		"Answer concisely and in English.",
		"Use ONLY the information in the supplied context (the learner's modules).",
		"Do NOT use outside or general knowledge.",
		"Give clear, structured answers based strictly on the available modules.",
	},
	chatAsk:    "LEARNER QUESTION:",
	chatAnswer: "ANSWER IN ENGLISH, CONCISELY:",

	contextLabel: "LESSON CONTEXT:",
	historyLabel: "Conversation history:",

	refusalRule: "If the information is not in the context, answer with EXACTLY one sentence of the form: '%s', " +
		"where [Subject] is the subject of the question. For example: '%s' Never answer just \"I don't know\".",

	explanation: "Briefly explain, in 1-2 sentences (at most 35 words), why the correct answer to the %s question below is correct. " +
		"Do not mention the text, the lesson or any source. Reply with the explanation ONLY.",
	questionLabel: "Question:",
	optionsLabel:  "Options:",
	correctLabel:  "Correct answer:",
}

var defaultRefusals = map[string][2]string{
	"ro": {
		"[Subiect] este un proces/concept biologic complex care nu este menționat în modulele de biologie pe care le ai.",
		"Fotosinteza este un proces/concept biologic complex care nu este menționat în modulele de biologie pe care le ai.",
	},
	"en": {
		"[Subject] is a complex biological process/concept that is not covered in the biology modules you have.",
		"Photosynthesis is a complex biological process/concept that is not covered in the biology modules you have.",
	},
}
