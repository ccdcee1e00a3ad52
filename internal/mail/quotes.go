package mail

import "math/rand"

// Quote is a motivational finance quote shipped with the app.
type Quote struct {
	Text   string
	Author string
}

var quotes = []Quote{
	{Text: "Do not save what is left after spending, but spend what is left after saving.", Author: "Warren Buffett"},
	{Text: "A penny saved is a penny earned.", Author: "Benjamin Franklin"},
	{Text: "Wealth consists not in having great possessions, but in having few wants.", Author: "Epictetus"},
	{Text: "It’s not your salary that makes you rich, it’s your spending habits.", Author: "Charles A. Jaffe"},
	{Text: "The art is not in making money, but in keeping it.", Author: "Proverb"},
	{Text: "Beware of little expenses. A small leak will sink a great ship.", Author: "Benjamin Franklin"},
	{Text: "Financial freedom is available to those who learn about it and work for it.", Author: "Robert Kiyosaki"},
	{Text: "Money is a terrible master but an excellent servant.", Author: "P.T. Barnum"},
	{Text: "You must gain control over your money or the lack of it will forever control you.", Author: "Dave Ramsey"},
	{Text: "Don’t tell me where your priorities are. Show me where you spend your money and I’ll tell you what they are.", Author: "James W. Frick"},
}

// RandomQuote picks one of the fixed quotes uniformly at random.
func RandomQuote() Quote {
	return quotes[rand.Intn(len(quotes))]
}
