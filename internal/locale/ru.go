package locale

import tele "gopkg.in/telebot.v3"

var ru = Locale{
	ButtonBack:          "⬅️ Назад",
	ButtonCancel:        "🚫 Отмена",
	ButtonYes:           "✅ Да",
	ButtonNo:            "❌ Нет",
	ButtonJournal:       "📚 Журнал",
	ButtonBirthdays:     "📆 Дни рождения",
	ButtonNotifications: "📣 Уведомления",
	ButtonAutovisit:     "😏 Автоотмечалка",
	ButtonHelp:          "❓ Справка",
	ButtonAdmin:         "👮🏻‍♂️ Админ-панель",
	ButtonRefresh:       "🔄 Обновить",
	ButtonAverages:      "📊 Средние баллы",
	ButtonAbsences:      "😶‍🌫️ Пропуски",
	ButtonSchedule:      "🗓 Расписание",
	ButtonProvision:     "💻 Дистант",
	ButtonNews:          "📰 Новости",
	ButtonLinks:         "🔗 Ссылки",
	ButtonUnlink:        "⚠ Отвязать аккаунт",
	ButtonVisitOff:      "👋 Отключить",
	ButtonVisitManual:   "🪄 Ручной обход",
	ButtonBroadcast:     "📣 Оповещение",
	ButtonStats:         "🧮 Статистика",
	Seasons: []Season{
		{Icon: "❄️", Name: "Зима", Months: []int{1, 2, 12}},
		{Icon: "🌿", Name: "Весна", Months: []int{3, 4, 5}},
		{Icon: "🌞", Name: "Лето", Months: []int{6, 7, 8}},
		{Icon: "🍁", Name: "Осень", Months: []int{9, 10, 11}},
	},
	NotificationLabels: []string{"Дни рождения", "Дистант", "Оценки", "Пропуски занятий"},

	MainMenuMessage:          "Жду дальнейших указаний.",
	NotLinkedMessage:         "Похоже, твои аккаунты в Telegram и на портале не связаны. Будем устанавливать связь?",
	JournalMenuMessage:       "Твой аккаунт Telegram связан с Образовательным порталом.\n\n*Имя:* %s. %s\n*Группа:* %s\n*День рождения:* %s\n*Рейтинг:* %s%%",
	ProfileRefreshedMessage:  "Данные журнала обновлены!\n\n*Имя:* %s. %s\n*Группа:* %s\n*День рождения:* %s\n*Рейтинг:* %s%%",
	NearestBirthdaysHeader:   "Ближайшие дни рождения:",
	NearestBirthdaysFooter:   "\n\nЧтобы посмотреть другие дни рождения, выбери нужный сезон года.",
	BirthdayToday:            "сегодня",
	BirthdayDaysLeft:         "остал%s %s",
	NoSeasonBirthdaysMessage: "В этом сезоне дней рождения нет.",
	NotificationsMenuMessage: "Здесь можно установить настройки уведомлений, рассылаемых ботом.",
	ToggledOnMessage:         "%s: уведомления включены.",
	ToggledOffMessage:        "%s: уведомления отключены.",
	StatusMessage:            "✅ Бот работает.",
	HelpMessage: "По вопросам и предложениям: @Nerotu\n" +
		"Справочная статья \\(пока не написана\\)\n" +
		"Версия %s \\([лог](https://telegra\\.ph/ruchnoj-bot-p1-20--spisok-izmenenij-10-15)\\)\n\n" +
		"*Дополнительные ссылки*\n" +
		"[Сообщество в ВК](https://vk\\.com/p1_20_animals)\n",
	PortalUnavailableMessage: "На данный момент журнал недоступен. Прошу прощения за неудобства, попробуй еще раз позже.",
	SendFailedMessage:        "Во время отправки ответа произошла ошибка. Возможно, кое-кто забыл экранировать зарезервированные символы. Отпишись об этом @Nerotu, пожалуйста, он должен помочь.",
	RateLimitedMessage:       "Помедленнее, я не успеваю! 🥵",
	MaintenanceMessage:       "⚠️ *Ведутся технические работы!* ⚠️\nСейчас мой исходный код получает обновления, и мы очень скоро вернемся в обычный режим. Спасибо за понимание. 🤗",

	AveragesHeader:      "Вот средние баллы за %d-й семестр:",
	AverageLine:         "🔹 *%s:* %s",
	AbsencesHeader:      "Твой отчет по пропускам в %d-ом семестре:",
	AbsenceLine:         "%s *%s:* %d из %d",
	AbsencesTotal:       "\n\nВ общей сложности: %d из %d (посещаемость %.2f%%, %d-е место)",
	ScheduleHoliday:     "🥳 %s у нас *%s* — на пары ехать не надо!",
	ScheduleHeader:      "*📋 Расписание на %s, %s*\n\n",
	ScheduleLesson:      "*%d пара:* %s (%s)",
	ScheduleNote:        "\n_⚠ %s_\n",
	ScheduleEmpty:       "😎 %s пар нет!",
	Today:               "Сегодня",
	Tomorrow:            "Завтра",
	ProvisionHeader:     "💻 *Дистант на сегодня, %s*\n",
	ProvisionEmpty:      "😮‍💨 Cегодня дистанционных пар нет.",
	ProvisionBroadcast:  "💻 *Внимание всем, сегодня дистант\\!*\n",
	RemoteLessonLine:    "🔹 [%s](%s/translation_show?edu=%s)",
	NewsPost:            "[%s](%s/user?userid=%d) — *[%s](%s/posts?action=show&postid=%d)* \\(от %s\\)\n👁 %-5d ❤️ %-5d 💬 %d",
	UntitledPost:        "_без названия_",
	NoNewsMessage:       "📭 Новостей пока нет.",
	LinksMessage:        "[👤 Профиль](%[1]s/user?userid=%[2]d)\n[✉️ Личные сообщения](%[1]s/um)\n[🎓 Журнал успеваемости](%[1]s/studentplan?sem=%[3]d)\n[💻 Дистанционное обеспечение](%[1]s/remote_provision?st_semester=%[3]d)\n[🗓 Расписание занятий](%[1]s/schedule)",
	BirthdaySingle:      "%s Сегодня свой %d-й день рождения празднует %s!",
	BirthdayMultiple:    "%s Сегодня день рождения празднуют %s!",
	BirthdayAgeForms:    [3]string{"год", "года", "лет"},
	BirthdayIcons:       []string{"🎁", "🎈", "🎉", "🎊", "🍾", "🍰", "🎂", "🍻", "🥂", "🔥", "🥳"},
	BirthdayIconSpecial: "😽",

	LinkingDeclinedMessage: "Ну, дело ваше. Только без связи функциональность бота будет сильно ограничена.",
	LinkingGuideMessage: "Для связи нужна ссылка на твой профиль на портале. Вот что нужно сделать:\n" +
		"1. Зайди в профиль любого одногруппника.\n" +
		"2. Найди в соответствующем списке себя.\n" +
		"3. Выдели имя и скопируй ссылку (правая кнопка мыши или долгий тап).\n" +
		"4. Если в ссылке есть фрагмент `?userid=<число>`, то вышли ее сообщением без сопутствующего текста.",
	LinkingInvalidMessage: "Вижу некорректный ввод — либо ссылка неверная, либо ее нет вообще. Пожалуйста, проверь, все ли сделано правильно, и попробуй еще раз.",
	LinkingPortalDown:     "Ссылка верна, но журнал сейчас недоступен. Попробуй еще раз попозже и извини за неудобства.",
	LinkingTakenMessage:   "Связь с таким профилем уже существует. Если она тебе не принадлежит, обратись в поддержку.",
	LinkingTooFastMessage: "Слишком много попыток. Подожди минуту и пришли ссылку еще раз.",
	LinkedMessage:         "Установлена связь с профилем на портале: %s %s, группа %s.",
	UnlinkConfirmMessage:  "Разрыв связи с профилем на портале сделает невозможным использование вкладки \"Журнал\", а также отключит все уведомления. Тебе это точно необходимо?",
	UnlinkDeclinedMessage: "Хорошо. Но если сильно понадобится, возвращайся.",
	UnlinkedMessage:       "Разорвана связь с профилем: %s %s, группа %s.",

	AutovisitOnlineMessage:   "Автоотмечалка подключена и ждет дистанта. Уведмоления будут приходить, и убрать их нельзя.\nЧтобы отключить автоотмечалку, выбери нужный пункт клавиатуры.",
	AutovisitOfferMessage:    "Здесь можно подключить автоотмечалку, которая умеет заходить на дистанционные пары вместо тебя. Попробуешь? 😏",
	AutovisitDeclinedMessage: "😾",
	AutovisitAskMessage:      "Хорошо. Тогда тебе нужно отправить логин и пароль от портала либо вот так: `login password`, либо вот так:\n```\nlogin\npassword```\nЭти данные будут зашифрованы, и даже в логах их не будет видно.",
	AutovisitCancelMessage:   "Да, понимаю, это немного страшно. 🥲",
	AutovisitRejectedMessage: "Портал не принял эти логин и пароль. Проверь их и пришли еще раз.",
	AutovisitDisabledMessage: "Автоотмечалка отключена, логин и пароль удалены.",
	AutovisitFailedMessage:   "❗️ Автоотмечалка не смогла отработать, поскольку журнал не позволил произвести вход. Попробуй использовать \"Ручной обход\" или самостоятельно отметиться на парах. Прошу прощения за неудобства.",
	AutovisitNoLessons:       "😮‍💨 Cегодня дистанционных пар нет, обходить нечего.",
	AutovisitReportHeader:    "👉 *Отчет автоотмечалки на %s*\n",
	AutovisitReportOK:        "✅ Успешно отмечено %s\n",
	AutovisitReportFailed:    "❌ Не удалось зайти на %s%s\n",
	AutovisitReportLesson:    "🔹 [Занятие №%d](%s/translation_show?edu=%s)",
	AutovisitReportFooter:    "_Для полной уверенности рекомендуется воспользоваться функцией \"Ручной обход\" еще раз в течение дня\\._",
	LessonForms:              [3]string{"пару", "пары", "пар"},

	AdminMenuMessage:       "Время навести шороху. С чего начнем?",
	AccessDeniedMessage:    "У вас недостаточный уровень допуска, чтобы [ДАННЫЕ УДАЛЕНЫ]. Пожалуйста, дождитесь сотрудника Фонда для приема амнезиака.",
	BroadcastStartMessage:  "Оповещение получат %s. Что напишем?",
	BroadcastCancelMessage: "Не сейчас — значит, не сейчас.",
	BroadcastFooter:        "\n\n_Эта рассылка создана вручную. Отвечать на сообщение не надо._",
	BroadcastSentMessage:   "✅ Сообщение отправлено.",
	ActiveUserForms:        [3]string{"активный пользователь", "активных пользователя", "активных пользователей"},
	StatsMessage: "⏱ *Время сессии:* %s\n" +
		"👤 *Активные пользователи:* %d\n" +
		"📩 *Сообщений за сессию:* %d\n" +
		"💥 *Ошибок за сессию:* %d\n" +
		"♻️ *Последнее обновление:* %s\n" +
		"📖 *Последний просмотр журнала:* %s\n\n" +
		"📯 *Подписки*\n" +
		"🔹 дни рождения — %d\n" +
		"🔹 оценки — %d\n" +
		"🔹 пропуски — %d\n" +
		"🔹 дистант — %d",
	HeartbeatMessage:      "❌ Последнее обновление от Telegram API было выполнено более 5 минут назад. Нужна проверка состояния бота.",
	MasterLoginFailed:     "❗️ Бот не смог войти в журнал под своей учетной записью. Проверь логин и пароль в конфигурации.",
	DuplicateMarksMessage: "⚠️ В журнале предмета «%s» (%d, группа %s) есть повторяющиеся отметки за одну дату и тип пары. Предмет пропускается, пока это не исправят.",

	CommandsMenu: []tele.Command{
		{Text: "schedule", Description: "Расписание на сегодня или завтра"},
		{Text: "provision", Description: "Дистанционные пары на сегодня"},
		{Text: "semavg", Description: "Средние баллы за семестр"},
		{Text: "absences", Description: "Отчет по пропускам"},
		{Text: "birthdays", Description: "Ближайшие дни рождения"},
		{Text: "status", Description: "Проверить, работает ли бот"},
		{Text: "help", Description: "Справка"},
	},
}
